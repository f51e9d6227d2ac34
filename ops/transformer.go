package ops

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// Transformer converts one parsed article into its OPS content documents.
// The article tree is never mutated: every document works on copies.
type Transformer struct {
	article *jpts.Article
	ctx     *Context
}

func NewTransformer(article *jpts.Article, log *slog.Logger) *Transformer {
	return &Transformer{
		article: article,
		ctx: &Context{
			Addr: Addresser{DOIFragment: article.DOIFragment()},
			Log:  log,
		},
	}
}

// Context exposes the transformer's shared state, mainly so the packager
// can learn whether any HTML tables were produced.
func (t *Transformer) Context() *Context { return t.ctx }

// WriteAll generates every content document the article calls for under
// opsDir: the synopsis always, the main text when a body exists, the
// bibliography when references exist, and the table appendix when the main
// pass collected native tables. It also drops the stylesheet the documents
// link to.
func (t *Transformer) WriteAll(opsDir string) error {
	if err := t.writeCSS(opsDir); err != nil {
		return err
	}

	synop := t.CreateSynopsis()
	if err := writeDocument(synop, filepath.Join(opsDir, t.ctx.Addr.Filename(RoleHeading))); err != nil {
		return err
	}

	if main := t.CreateMain(); main != nil {
		if err := writeDocument(main, filepath.Join(opsDir, t.ctx.Addr.Filename(RoleMain))); err != nil {
			return err
		}
	}

	if biblio := t.CreateBiblio(); biblio != nil {
		if err := writeDocument(biblio, filepath.Join(opsDir, t.ctx.Addr.Filename(RoleBiblio))); err != nil {
			return err
		}
	}

	if tables := t.CreateTables(); tables != nil {
		if err := writeDocument(tables, filepath.Join(opsDir, t.ctx.Addr.Filename(RoleTables))); err != nil {
			return err
		}
	}

	return nil
}

// CreateMain builds the main text document: a clone of the article body
// with back matter appended, run through the full rule sequence. Returns
// nil when the article has no body.
func (t *Transformer) CreateMain() *etree.Document {
	if t.article.Body == nil {
		return nil
	}
	doc, html := makeDocument(t.article.Metadata.TitleText())
	body := t.article.Body.Copy()
	html.AddChild(body)

	// Assign generated ids before any structure moves; the navigation
	// builder runs the same assignment against the original.
	t.ctx.IDs = jpts.SynthesizeIDs(body)
	jpts.ApplyIDs(t.ctx.IDs)

	t.appendBackMatter(body)

	t.ctx.convertDispFormulas(body)
	t.ctx.convertInlineFormulas(body)
	convertDispQuotes(body)
	convertBoxedText(body)
	convertVerseGroups(body)
	t.ctx.convertSupplementaryMaterial(body)
	convertFootnotes(body)
	t.ctx.convertDefLists(body)
	convertRefLists(body)
	t.ctx.convertLists(body)

	t.ctx.convertFigures(body)
	t.ctx.convertTableWraps(body)

	convertEmphasis(body)
	convertAddressLinking(body)
	t.ctx.convertXrefs(body)
	convertNamedContent(body)

	// Division retagging runs last so every rule above still sees JPTS
	// structure.
	convertSections(body)
	divHeadings(body, 0)

	return doc
}

// CreateBiblio builds the bibliography document: one paragraph of
// flattened citation text per reference, addressable by the ref's id.
// Returns nil when the article has no references.
func (t *Transformer) CreateBiblio() *etree.Document {
	if !t.article.HasReferences() {
		return nil
	}
	doc, html := makeDocument(t.article.Metadata.TitleText())
	body := html.CreateElement("body")
	body.CreateAttr("id", "references")
	for _, ref := range t.article.Back.FindElements(".//ref") {
		p := body.CreateElement("p")
		if id := ref.SelectAttrValue("id", ""); id != "" {
			p.CreateAttr("id", id)
		}
		p.SetText(jpts.TextContent(ref))
	}
	return doc
}

// CreateTables builds the HTML-table appendix from the tables the main
// pass set aside, then runs the restricted rule set over them. Returns nil
// when no native tables were collected.
func (t *Transformer) CreateTables() *etree.Document {
	if len(t.ctx.PendingTables) == 0 {
		return nil
	}
	doc, html := makeDocument(t.article.Metadata.TitleText())
	body := html.CreateElement("body")

	for _, el := range t.ctx.PendingTables {
		if el.Tag == "table-wrap-foot" {
			foot := body.CreateElement("div")
			foot.CreateAttr("class", "table-wrap-foot")
			jpts.MoveChildrenInto(foot, el)
			continue
		}
		if label := el.SelectAttrValue("label", ""); label != "" {
			el.RemoveAttr("label")
			labelDiv := body.CreateElement("div")
			labelDiv.CreateElement("b").SetText(label)
		}
		body.AddChild(el)
	}

	// The appendix only needs the rules that can apply inside tables.
	convertEmphasis(body)
	convertFootnotes(body)
	t.ctx.convertDispFormulas(body)
	t.ctx.convertInlineFormulas(body)
	t.ctx.convertXrefs(body)

	return doc
}

// appendBackMatter moves the presentable parts of <back> into the linear
// text flow: acknowledgments, author contributions, glossaries, and proof
// notes. The bibliography stays out; it gets its own document.
func (t *Transformer) appendBackMatter(body *etree.Element) {
	back := t.article.Back
	if back == nil {
		return
	}

	if ack := back.SelectElement("ack"); ack != nil {
		div := ack.Copy()
		retag(div, "div", "id", "acknowledgments")
		title := etree.NewElement("title")
		title.SetText("Acknowledgments")
		div.InsertChildAt(0, title)
		body.AddChild(div)
	}

	// Author contributions live in front-matter author-notes, but read as
	// back matter.
	if notes := t.article.Metadata.AuthorNotes; notes != nil {
		for _, fn := range notes.SelectElements("fn") {
			if fn.SelectAttrValue("fn-type", "") != "con" {
				continue
			}
			div := fn.Copy()
			retag(div, "div", "id", "author-contributions")
			title := etree.NewElement("title")
			title.SetText("Author Contributions")
			div.InsertChildAt(0, title)
			body.AddChild(div)
			break
		}
	}

	for _, glossary := range back.SelectElements("glossary") {
		div := glossary.Copy()
		retag(div, "div", "class", "back-glossary")
		body.AddChild(div)
	}

	for _, notes := range back.SelectElements("notes") {
		sec := notes.SelectElement("sec")
		if sec == nil {
			continue
		}
		div := sec.Copy()
		retag(div, "div", "class", "back-notes")
		body.AddChild(div)
	}
}

// makeDocument builds the shared XHTML 1.1 document skeleton. The caller
// adds the body.
func makeDocument(title string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(`DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xml:lang", "en-US")

	head := html.CreateElement("head")
	head.CreateElement("title").SetText(title)
	link := head.CreateElement("link")
	link.CreateAttr("href", "css/article.css")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	meta := head.CreateElement("meta")
	meta.CreateAttr("http-equiv", "Content-Type")
	meta.CreateAttr("content", "application/xhtml+xml")

	return doc, html
}

func writeDocument(doc *etree.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ops: create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("ops: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (t *Transformer) writeCSS(opsDir string) error {
	cssDir := filepath.Join(opsDir, "css")
	if err := os.MkdirAll(cssDir, 0o755); err != nil {
		return fmt.Errorf("ops: create css dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cssDir, "article.css"), []byte(defaultCSS), 0o644); err != nil {
		return fmt.Errorf("ops: write stylesheet: %w", err)
	}
	return nil
}
