package ops

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// CreateSynopsis builds the synopsis document: the heading (title,
// byline, affiliations, abstracts) followed by the article-info block
// (citation, editors, dates, copyright, funding, competing interests,
// correspondence, leftover footnotes). Every piece except the title is
// optional and silently skipped when absent.
func (t *Transformer) CreateSynopsis() *etree.Document {
	meta := t.article.Metadata
	doc, html := makeDocument(meta.TitleText())
	body := html.CreateElement("body")

	heading := body.CreateElement("div")
	heading.CreateAttr("id", "Heading")
	t.makeHeadingTitle(heading)
	t.makeHeadingAuthors(heading)
	t.makeHeadingAffiliations(heading)
	t.makeHeadingAbstracts(heading)

	info := body.CreateElement("div")
	info.CreateAttr("id", "ArticleInfo")
	t.makeInfoCitation(info)
	t.makeInfoEditors(info)
	t.makeInfoDates(info)
	t.makeInfoCopyright(info)
	t.makeInfoFunding(info)
	t.makeInfoCompetingInterests(info)
	t.makeInfoCorrespondence(info)
	t.makeInfoBackFootnotes(info)

	// The metadata copies can carry inline JPTS markup.
	convertEmphasis(body)
	convertAddressLinking(body)
	t.ctx.convertInlineFormulas(body)
	t.ctx.convertXrefs(body)
	convertNamedContent(body)

	return doc
}

func (t *Transformer) makeHeadingTitle(heading *etree.Element) {
	title := heading.CreateElement("h1")
	title.CreateAttr("id", "title")
	title.CreateAttr("class", "article-title")
	jpts.CopyChildrenInto(title, t.article.Metadata.Title)
}

// makeHeadingAuthors writes the byline, with superscript links for each
// author's affiliation and correspondence marks.
func (t *Transformer) makeHeadingAuthors(heading *etree.Element) {
	authors := t.article.Metadata.Authors()
	if len(authors) == 0 {
		return
	}
	line := heading.CreateElement("h3")
	line.CreateAttr("class", "authors")
	for i, author := range authors {
		if i > 0 {
			line.CreateText(", ")
		}
		if author.Collab != nil {
			jpts.CopyChildrenInto(line, author.Collab)
		} else {
			line.CreateText(author.DisplayName())
		}
		for _, xref := range author.Xrefs {
			if xref.RefType != "aff" && xref.RefType != "corresp" {
				continue
			}
			sup := line.CreateElement("sup")
			link := sup.CreateElement("a")
			link.CreateAttr("href", "#"+xref.RID)
			link.SetText(xref.Sup)
		}
	}
}

func (t *Transformer) makeHeadingAffiliations(heading *etree.Element) {
	affs := t.article.Metadata.Affiliations
	if len(affs) == 0 {
		return
	}
	div := heading.CreateElement("div")
	div.CreateAttr("id", "affiliations")
	div.CreateAttr("class", "affiliations")
	for i, aff := range affs {
		span := div.CreateElement("span")
		if id := aff.SelectAttrValue("id", ""); id != "" {
			span.CreateAttr("id", id)
		}
		if label := aff.SelectElement("label"); label != nil {
			b := span.CreateElement("b")
			b.SetText(jpts.TextContent(label) + " ")
		}
		if addr := aff.SelectElement("addr-line"); addr != nil {
			span.CreateText(jpts.TextContent(addr))
		} else {
			span.CreateText(affText(aff))
		}
		if i < len(affs)-1 {
			span.CreateText(", ")
		}
	}
}

// affText flattens an affiliation, skipping its label so the text is not
// prefixed twice.
func affText(aff *etree.Element) string {
	var sb strings.Builder
	for _, tok := range aff.Child {
		switch el := tok.(type) {
		case *etree.CharData:
			sb.WriteString(el.Data)
		case *etree.Element:
			if el.Tag != "label" {
				sb.WriteString(jpts.TextContent(el))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// abstractHeaders maps abstract-type values to displayed section headers
// and ids. The main abstract has no type.
var abstractHeaders = map[string][2]string{
	"":                {"Abstract", "abstract"},
	"summary":         {"Author Summary", "author-summary"},
	"editors-summary": {"Editors' Summary", "editor-summary"},
}

func (t *Transformer) makeHeadingAbstracts(heading *etree.Element) {
	for _, abstract := range t.article.Metadata.Abstracts {
		if abstract.Type == "toc" {
			continue
		}
		header, ok := abstractHeaders[abstract.Type]
		if !ok {
			t.ctx.logger().Warn("unrecognized abstract-type", "abstract-type", abstract.Type)
			header = [2]string{"Abstract", abstract.Type}
		}
		heading.CreateElement("h2").SetText(header[0])

		div := etree.NewElement("div")
		div.CreateAttr("id", header[1])
		div.CreateAttr("class", "abstract")
		jpts.CopyChildrenInto(div, abstract.Node)
		for _, title := range div.FindElements(".//title") {
			jpts.Detach(title)
		}
		heading.AddChild(div)
	}
}

func (t *Transformer) makeInfoCitation(info *etree.Element) {
	div := info.CreateElement("div")
	div.CreateAttr("id", "article-citation")
	div.CreateElement("b").SetText("Citation: " + t.article.DOI)
}

func (t *Transformer) makeInfoEditors(info *etree.Element) {
	editors := t.article.Metadata.Editors()
	if len(editors) == 0 {
		return
	}
	div := info.CreateElement("div")
	div.CreateAttr("id", "editors")
	b := div.CreateElement("b")
	if len(editors) > 1 {
		b.SetText("Editors: ")
	} else {
		b.SetText("Editor: ")
	}
	for i, editor := range editors {
		if i > 0 {
			div.CreateText("; ")
		}
		if editor.Collab != nil {
			jpts.CopyChildrenInto(div, editor.Collab)
		} else {
			div.CreateText(editor.DisplayName())
		}
		for _, xref := range editor.Xrefs {
			if xref.RefType != "aff" {
				continue
			}
			if aff := t.findAffiliation(xref.RID); aff != nil {
				div.CreateText(", ")
				if addr := aff.SelectElement("addr-line"); addr != nil {
					div.CreateText(jpts.TextContent(addr))
				} else {
					div.CreateText(affText(aff))
				}
			}
		}
	}
}

func (t *Transformer) findAffiliation(id string) *etree.Element {
	for _, aff := range t.article.Metadata.Affiliations {
		if aff.SelectAttrValue("id", "") == id {
			return aff
		}
	}
	return nil
}

func (t *Transformer) makeInfoDates(info *etree.Element) {
	meta := t.article.Metadata
	received, haveReceived := meta.History["received"]
	accepted, haveAccepted := meta.History["accepted"]
	published, havePublished := meta.PubDates["epub"]
	if !haveReceived && !haveAccepted && !havePublished {
		return
	}
	div := info.CreateElement("div")
	div.CreateAttr("id", "article-dates")
	if haveReceived {
		div.CreateElement("b").SetText("Received: ")
		div.CreateText(received.Display() + "; ")
	}
	if haveAccepted {
		div.CreateElement("b").SetText("Accepted: ")
		div.CreateText(accepted.Display() + "; ")
	}
	if havePublished {
		div.CreateElement("b").SetText("Published: ")
		div.CreateText(published.Display())
	}
}

func (t *Transformer) makeInfoCopyright(info *etree.Element) {
	permissions := t.article.Metadata.Permissions
	if permissions == nil {
		return
	}
	div := info.CreateElement("div")
	div.CreateAttr("id", "copyright")
	div.CreateElement("b").SetText("Copyright: ")
	text := "© "
	if permissions.Year != "" {
		text += permissions.Year + " "
	}
	if permissions.Holder != "" {
		text += permissions.Holder + ". "
	}
	text += permissions.LicenseText
	div.CreateText(text)
}

func (t *Transformer) makeInfoFunding(info *etree.Element) {
	statement := t.article.Metadata.FundingStatement
	if statement == nil {
		return
	}
	div := info.CreateElement("div")
	div.CreateAttr("id", "funding")
	div.CreateElement("b").SetText("Funding: ")
	jpts.CopyChildrenInto(div, statement)
}

func (t *Transformer) makeInfoCompetingInterests(info *etree.Element) {
	notes := t.article.Metadata.AuthorNotes
	if notes == nil {
		return
	}
	for _, fn := range notes.SelectElements("fn") {
		if fn.SelectAttrValue("fn-type", "") != "conflict" {
			continue
		}
		div := info.CreateElement("div")
		div.CreateAttr("id", "conflict")
		div.CreateElement("b").SetText("Competing Interests: ")
		if p := fn.SelectElement("p"); p != nil {
			jpts.CopyChildrenInto(div, p)
		}
		return
	}
}

func (t *Transformer) makeInfoCorrespondence(info *etree.Element) {
	notes := t.article.Metadata.AuthorNotes
	if notes == nil {
		return
	}
	corresps := notes.SelectElements("corresp")
	if len(corresps) == 0 {
		return
	}
	div := info.CreateElement("div")
	div.CreateAttr("id", "correspondence")
	for _, corresp := range corresps {
		sub := div.CreateElement("div")
		if id := corresp.SelectAttrValue("id", ""); id != "" {
			sub.CreateAttr("id", id)
		}
		jpts.CopyChildrenInto(sub, corresp)
	}
}

// makeInfoBackFootnotes carries fn-group footnotes of type "other" from
// the back matter into the article info.
func (t *Transformer) makeInfoBackFootnotes(info *etree.Element) {
	back := t.article.Back
	if back == nil {
		return
	}
	var div *etree.Element
	for _, group := range back.SelectElements("fn-group") {
		for _, fn := range group.SelectElements("fn") {
			if fn.SelectAttrValue("fn-type", "") != "other" {
				continue
			}
			if div == nil {
				div = info.CreateElement("div")
				div.CreateAttr("class", "back-fn-other")
			}
			jpts.CopyChildrenInto(div, fn)
		}
	}
}
