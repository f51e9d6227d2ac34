package jpts

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Metadata is the typed front-matter model. Every field except Title is
// optional: absence is expected for many articles and is never an error.
type Metadata struct {
	// Title is the <article-title> element; it may carry inline markup,
	// so consumers copy its children rather than flattening to text.
	Title *etree.Element

	JournalTitle  string
	PublisherName string

	// ArticleIDs maps pub-id-type values ("doi", "pmid", ...) to ids.
	ArticleIDs map[string]string

	Contributors []Contributor
	Affiliations []*etree.Element

	Abstracts []Abstract

	// PubDates and History are keyed by pub-type and date-type.
	PubDates map[string]Date
	History  map[string]Date

	Permissions *Permissions

	// FundingStatement is the first funding-statement, when present.
	FundingStatement *etree.Element

	// AuthorNotes holds <author-notes> for correspondence and
	// competing-interest footnotes.
	AuthorNotes *etree.Element

	Keywords []string
}

// Abstract is one abstract variant; Type is empty for the main abstract.
type Abstract struct {
	Type string
	Node *etree.Element
}

// Date is a partial calendar date as JPTS represents it. Any component may
// be empty; Season substitutes for month/day in seasonal issues.
type Date struct {
	Year   string
	Month  string
	Day    string
	Season string
}

// IsZero reports whether no component of the date was supplied.
func (d Date) IsZero() bool {
	return d.Year == "" && d.Month == "" && d.Day == "" && d.Season == ""
}

var monthNames = []string{"", "January", "February", "March", "April", "May",
	"June", "July", "August", "September", "October", "November", "December"}

// Display renders the date for article-info text ("April 27, 2012",
// "Spring, 2012", or just the year).
func (d Date) Display() string {
	if d.Season != "" {
		return d.Season + ", " + d.Year
	}
	if d.Month == "" && d.Day == "" {
		return d.Year
	}
	var sb strings.Builder
	if m := monthIndex(d.Month); m > 0 {
		sb.WriteString(monthNames[m])
	}
	if d.Day != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(d.Day)
	}
	if sb.Len() == 0 {
		return d.Year
	}
	return sb.String() + ", " + d.Year
}

// ISO renders the date as yyyy-mm-dd, omitting missing trailing parts.
func (d Date) ISO() string {
	if d.Year == "" {
		return ""
	}
	out := d.Year
	if m := monthIndex(d.Month); m > 0 {
		out += fmt.Sprintf("-%02d", m)
		if d.Day != "" {
			day := d.Day
			if len(day) == 1 {
				day = "0" + day
			}
			out += "-" + day
		}
	}
	return out
}

func monthIndex(m string) int {
	m = strings.TrimSpace(m)
	if m == "" {
		return 0
	}
	n := 0
	for _, r := range m {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if n < 1 || n > 12 {
		return 0
	}
	return n
}

// Permissions carries the copyright statement pieces.
type Permissions struct {
	Year        string
	Holder      string
	LicenseText string
}

// TitleText flattens the article title to plain text.
func (m *Metadata) TitleText() string {
	if m.Title == nil {
		return ""
	}
	return strings.TrimSpace(TextContent(m.Title))
}

// Authors returns the contributors with contrib-type "author".
func (m *Metadata) Authors() []Contributor {
	return m.byType("author")
}

// Editors returns the contributors with contrib-type "editor".
func (m *Metadata) Editors() []Contributor {
	return m.byType("editor")
}

func (m *Metadata) byType(t string) []Contributor {
	var out []Contributor
	for _, c := range m.Contributors {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// extractor converts front matter to the typed model. Publisher and DTD
// version select one at parse time; all of them are pure functions of the
// front-matter tree.
type extractor func(front *etree.Element) (*Metadata, error)

func metadataExtractor(pub Publisher, dtdVersion string) extractor {
	// The 2.x and 3.0 tagsets differ mainly in contributor name markup,
	// which parseName handles for both; publishers differ in how editors
	// and correspondence are deposited.
	switch pub {
	case PublisherFrontiers:
		return extractFrontiers
	default:
		return extractCommon
	}
}

func extractCommon(front *etree.Element) (*Metadata, error) {
	articleMeta := front.FindElement(".//article-meta")
	if articleMeta == nil {
		return nil, ErrNoFront
	}
	titleGroup := articleMeta.SelectElement("title-group")
	if titleGroup == nil {
		return nil, ErrNoTitleGroup
	}

	m := &Metadata{
		Title:      titleGroup.SelectElement("article-title"),
		ArticleIDs: make(map[string]string),
		PubDates:   make(map[string]Date),
		History:    make(map[string]Date),
	}
	if m.Title == nil {
		return nil, ErrNoTitleGroup
	}

	if jm := front.FindElement(".//journal-meta"); jm != nil {
		if jt := jm.FindElement(".//journal-title"); jt != nil {
			m.JournalTitle = strings.TrimSpace(TextContent(jt))
		}
		if pn := jm.FindElement(".//publisher/publisher-name"); pn != nil {
			m.PublisherName = strings.TrimSpace(TextContent(pn))
		}
	}

	for _, id := range articleMeta.SelectElements("article-id") {
		if t := id.SelectAttrValue("pub-id-type", ""); t != "" {
			m.ArticleIDs[t] = strings.TrimSpace(TextContent(id))
		}
	}

	for _, group := range articleMeta.SelectElements("contrib-group") {
		for _, contrib := range group.SelectElements("contrib") {
			m.Contributors = append(m.Contributors, parseContrib(contrib))
		}
		// Affiliations may live inside the contrib-group.
		m.Affiliations = append(m.Affiliations, group.SelectElements("aff")...)
	}
	m.Affiliations = append(m.Affiliations, articleMeta.SelectElements("aff")...)

	for _, abstract := range articleMeta.SelectElements("abstract") {
		m.Abstracts = append(m.Abstracts, Abstract{
			Type: abstract.SelectAttrValue("abstract-type", ""),
			Node: abstract,
		})
	}

	for _, pd := range articleMeta.SelectElements("pub-date") {
		m.PubDates[pd.SelectAttrValue("pub-type", "")] = parseDate(pd)
	}
	if history := articleMeta.SelectElement("history"); history != nil {
		for _, date := range history.SelectElements("date") {
			m.History[date.SelectAttrValue("date-type", "")] = parseDate(date)
		}
	}

	if permissions := articleMeta.SelectElement("permissions"); permissions != nil {
		m.Permissions = parsePermissions(permissions)
	}

	if fg := articleMeta.SelectElement("funding-group"); fg != nil {
		m.FundingStatement = fg.SelectElement("funding-statement")
	}

	m.AuthorNotes = articleMeta.SelectElement("author-notes")

	for _, kwd := range articleMeta.FindElements(".//kwd-group/kwd") {
		if text := strings.TrimSpace(TextContent(kwd)); text != "" {
			m.Keywords = append(m.Keywords, text)
		}
	}

	return m, nil
}

// extractFrontiers layers the Frontiers quirks over the common model:
// editors and reviewers arrive as "Edited by:"/"Reviewed by:" footnotes in
// author-notes instead of editor contribs.
func extractFrontiers(front *etree.Element) (*Metadata, error) {
	m, err := extractCommon(front)
	if err != nil {
		return nil, err
	}
	if m.AuthorNotes == nil {
		return m, nil
	}
	for _, fn := range m.AuthorNotes.SelectElements("fn") {
		if fn.SelectAttrValue("fn-type", "") != "edited-by" {
			continue
		}
		p := fn.SelectElement("p")
		if p == nil {
			continue
		}
		text := strings.TrimSpace(TextContent(p))
		if name, ok := strings.CutPrefix(text, "Edited by: "); ok {
			name = strings.TrimSpace(strings.SplitN(name, ",", 2)[0])
			if name != "" {
				m.Contributors = append(m.Contributors, Contributor{Type: "editor", Surname: name})
			}
		}
	}
	return m, nil
}

func parseDate(e *etree.Element) Date {
	var d Date
	if y := e.SelectElement("year"); y != nil {
		d.Year = strings.TrimSpace(TextContent(y))
	}
	if mo := e.SelectElement("month"); mo != nil {
		d.Month = strings.TrimSpace(TextContent(mo))
	}
	if day := e.SelectElement("day"); day != nil {
		d.Day = strings.TrimSpace(TextContent(day))
	}
	if s := e.SelectElement("season"); s != nil {
		d.Season = strings.TrimSpace(TextContent(s))
	}
	return d
}

func parsePermissions(e *etree.Element) *Permissions {
	p := &Permissions{}
	if y := e.SelectElement("copyright-year"); y != nil {
		p.Year = strings.TrimSpace(TextContent(y))
	}
	if h := e.SelectElement("copyright-holder"); h != nil {
		p.Holder = strings.TrimSpace(TextContent(h))
	}
	if lic := e.SelectElement("license"); lic != nil {
		if lp := lic.SelectElement("license-p"); lp != nil {
			p.LicenseText = strings.TrimSpace(TextContent(lp))
		} else {
			p.LicenseText = strings.TrimSpace(TextContent(lic))
		}
	}
	return p
}
