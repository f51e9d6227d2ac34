package ops

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func parseFragment(t *testing.T, s string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return doc.Root()
}

func testContext() *Context {
	return &Context{
		Addr: Addresser{DOIFragment: "journal.pone.0000001"},
		Log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestConvertEmphasis(t *testing.T) {
	body := parseFragment(t, `<body><p><bold>a</bold><italic>b</italic><monospace>c</monospace><sc>d</sc><underline>e</underline></p></body>`)
	convertEmphasis(body)

	tests := []struct {
		path, tag, style string
	}{
		{"./p/b", "b", ""},
		{"./p/i", "i", ""},
		{"./p/span[@style='font-family:monospace']", "span", "font-family:monospace"},
		{"./p/span[@style='font-variant:small-caps']", "span", "font-variant:small-caps"},
		{"./p/span[@style='text-decoration:underline']", "span", "text-decoration:underline"},
	}
	for _, tt := range tests {
		if body.FindElement(tt.path) == nil {
			t.Errorf("missing %s after emphasis conversion", tt.path)
		}
	}
	if body.FindElement(".//bold") != nil {
		t.Error("bold element survived conversion")
	}
}

func TestConvertAddressLinking(t *testing.T) {
	body := parseFragment(t, `<body xmlns:xlink="http://www.w3.org/1999/xlink"><p>
		<email>sci@example.org</email>
		<ext-link id="e1" xlink:href="http://example.org/data">data</ext-link>
		<uri>http://example.org/more</uri>
	</p></body>`)
	convertAddressLinking(body)

	if el := body.FindElement(".//a[@href='mailto:sci@example.org']"); el == nil {
		t.Error("email did not become a mailto anchor")
	}
	link := body.FindElement(".//a[@href='http://example.org/data']")
	if link == nil {
		t.Fatal("ext-link did not become an anchor")
	}
	if link.SelectAttrValue("id", "") != "e1" {
		t.Error("ext-link id not preserved")
	}
	if el := body.FindElement(".//a[@href='http://example.org/more']"); el == nil {
		t.Error("uri text did not become the anchor address")
	}
}

func TestConvertXrefs(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body>
		<p><xref ref-type="bibr" rid="r3">[3]</xref></p>
		<p><xref ref-type="fig" rid="f2">Figure 2</xref></p>
		<p><xref ref-type="launchpad" rid="x9">?</xref></p>
	</body>`)
	ctx.convertXrefs(body)

	if el := body.FindElement(".//a[@href='biblio.journal.pone.0000001.xml#r3']"); el == nil {
		t.Error("bibr xref does not target the biblio document")
	}
	if el := body.FindElement(".//a[@href='main.journal.pone.0000001.xml#f2']"); el == nil {
		t.Error("fig xref does not target the main document")
	}
	spans := body.FindElements(".//span")
	if len(spans) != 1 {
		t.Fatalf("unknown ref-type produced %d spans, want 1 inert span", len(spans))
	}
	if len(spans[0].Attr) != 0 {
		t.Error("inert span kept attributes")
	}
	if spans[0].Text() != "?" {
		t.Error("inert span lost its text")
	}
}

func TestConvertLists(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body>
		<list id="l1" list-type="order"><list-item><p>a</p></list-item></list>
		<list list-type="simple"><list-item><p>b</p></list-item></list>
		<list list-type="cascading"><list-item><p>c</p></list-item></list>
	</body>`)
	ctx.convertLists(body)

	ol := body.FindElement("./ol[@class='order']")
	if ol == nil {
		t.Fatal("ordered list not converted to ol")
	}
	if ol.SelectAttrValue("id", "") != "l1" {
		t.Error("list id not preserved")
	}
	if ol.SelectElement("li") == nil {
		t.Error("list-item not converted to li")
	}
	if body.FindElement("./ul[@class='simple']") == nil {
		t.Error("simple list did not keep its class")
	}
	// Unknown type degrades to a plain ul.
	if got := len(body.SelectElements("ul")); got != 2 {
		t.Errorf("got %d ul elements, want 2", got)
	}
}

func TestConvertDefLists(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body><def-list id="d1">
		<def-item><term>apoptosis</term><def><p>programmed cell death</p></def></def-item>
		<def-item><term>orphan</term></def-item>
	</def-list></body>`)
	ctx.convertDefLists(body)

	dl := body.FindElement("./div[@class='def-list']")
	if dl == nil {
		t.Fatal("def-list not converted")
	}
	if dl.SelectAttrValue("id", "") != "d1" {
		t.Error("def-list id not preserved")
	}
	term := dl.FindElement("./p[@class='def-item-term']")
	if term == nil || term.Text() != "apoptosis" {
		t.Error("term paragraph missing or wrong")
	}
	def := dl.FindElement("./p[@class='def-item-def']")
	if def == nil || def.Text() != "programmed cell death" {
		t.Error("definition paragraph missing or wrong")
	}
	// The item with no def is dropped entirely.
	if dl.FindElement(".//def-item") != nil {
		t.Error("def-item survived conversion")
	}
	if got := len(dl.FindElements("./p")); got != 2 {
		t.Errorf("got %d paragraphs, want 2", got)
	}
}

func TestConvertSectionsAndHeadings(t *testing.T) {
	body := parseFragment(t, `<body>
		<sec id="s1" sec-type="intro">
			<title>Introduction</title>
			<sec id="s1a"><label>1.1</label><title>Background</title></sec>
		</sec>
	</body>`)
	convertSections(body)
	divHeadings(body, 0)

	top := body.FindElement("./div[@id='s1']")
	if top == nil {
		t.Fatal("sec not converted to div")
	}
	if top.SelectAttrValue("class", "") != "intro" {
		t.Error("sec-type not carried as class")
	}
	h2 := top.SelectElement("h2")
	if h2 == nil || h2.Text() != "Introduction" {
		t.Error("top-level title not converted to h2")
	}
	h3 := body.FindElement("./div/div[@id='s1a']/h3")
	if h3 == nil {
		t.Fatal("nested title not converted to h3")
	}
	if got := h3.Text(); got != "1.1 Background" {
		t.Errorf("label not folded into heading: %q", got)
	}
}

func TestDivHeadingsBeyondH6(t *testing.T) {
	// Seven levels deep: h2..h6 run out at depth 5.
	body := parseFragment(t, `<body>
		<div><div><div><div><div><div id="deep"><title>Depths</title></div></div></div></div></div></div>
	</body>`)
	divHeadings(body, 0)

	span := body.FindElement(".//div[@id='deep']/span")
	if span == nil {
		t.Fatal("deep title not converted to span")
	}
	if span.SelectAttrValue("class", "") != "heading-deep" {
		t.Error("deep heading span lacks its class")
	}
	if body.FindElement(".//h7") != nil {
		t.Error("invalid h7 element produced")
	}
}

func TestConvertFigures(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body xmlns:xlink="http://www.w3.org/1999/xlink">
		<p>Text <fig id="f1">
			<label>Figure 1</label>
			<caption><title>Spread over time.</title><p>Details.</p></caption>
			<graphic xlink:href="10.1371/journal.pone.0000001.g001"/>
		</fig> continues.</p>
	</body>`)
	ctx.convertFigures(body)

	img := body.FindElement("./img[@id='f1']")
	if img == nil {
		t.Fatal("figure image not created at body level")
	}
	if got := img.SelectAttrValue("src", ""); got != "images-journal.pone.0000001/g001.png" {
		t.Errorf("img src = %q", got)
	}
	if img.SelectAttrValue("alt", "") != "A Figure" {
		t.Error("img alt missing")
	}
	caption := body.FindElement("./div[@class='figure-caption']")
	if caption == nil {
		t.Fatal("caption div missing")
	}
	b := caption.SelectElement("b")
	if b == nil || !strings.HasPrefix(b.Text(), "Figure 1. ") {
		t.Error("caption label missing its bold prefix")
	}
	if got := len(body.SelectElements("hr")); got != 2 {
		t.Errorf("got %d hr elements, want 2", got)
	}
	if body.FindElement(".//fig") != nil {
		t.Error("fig element survived conversion")
	}
}

func TestConvertFiguresMissingGraphic(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body><p><fig id="f1"><label>Figure 1</label></fig></p></body>`)
	ctx.convertFigures(body)

	// Unrenderable figures stay put rather than killing the conversion.
	if body.FindElement(".//fig[@id='f1']") == nil {
		t.Error("graphic-less figure was removed")
	}
	if body.FindElement(".//img") != nil {
		t.Error("image created without a graphic")
	}
}

func TestConvertTableWraps(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body xmlns:xlink="http://www.w3.org/1999/xlink">
		<table-wrap id="t1">
			<label>Table 1</label>
			<caption><title>Counts.</title></caption>
			<alternatives>
				<graphic xlink:href="10.1371/journal.pone.0000001.t001"/>
				<table><tr><td>5</td></tr></table>
			</alternatives>
			<table-wrap-foot><fn id="tfn1"><p>n = 5</p></fn></table-wrap-foot>
		</table-wrap>
	</body>`)
	ctx.convertTableWraps(body)

	img := body.FindElement("./img[@id='t1']")
	if img == nil {
		t.Fatal("table image not created")
	}
	if got := img.SelectAttrValue("src", ""); got != "images-journal.pone.0000001/t001.png" {
		t.Errorf("img src = %q", got)
	}
	// Caption precedes the image for tables.
	caption := body.FindElement("./div[@class='table-caption']")
	if caption == nil {
		t.Fatal("caption div missing")
	}
	if caption.Index() > img.Index() {
		t.Error("table caption should precede the image")
	}
	link := body.FindElement("./a")
	if link == nil {
		t.Fatal("anchor to HTML table missing")
	}
	if got := link.SelectAttrValue("href", ""); got != "tables.journal.pone.0000001.xml#t1" {
		t.Errorf("anchor href = %q", got)
	}

	if len(ctx.PendingTables) != 2 {
		t.Fatalf("pending tables = %d, want table plus foot", len(ctx.PendingTables))
	}
	table := ctx.PendingTables[0]
	if table.Tag != "table" || table.SelectAttrValue("id", "") != "t1" {
		t.Error("pending table lost its identity")
	}
	if table.SelectAttrValue("label", "") != "Table 1" {
		t.Error("pending table lost its label")
	}
	if ctx.PendingTables[1].Tag != "table-wrap-foot" {
		t.Error("table-wrap-foot not collected")
	}
	if body.FindElement(".//table-wrap") != nil {
		t.Error("table-wrap survived conversion")
	}
}

func TestConvertFootnotes(t *testing.T) {
	body := parseFragment(t, `<body>
		<fn id="fn1" fn-type="present-address"><p>Current address: somewhere else.</p></fn>
		<fn id="fn2"><label>*</label></fn>
		<fn id="fn3"><p>Erratum text. Corrected the author list.</p></fn>
	</body>`)
	convertFootnotes(body)

	p := body.FindElement("./p[@id='fn1']")
	if p == nil {
		t.Fatal("footnote paragraph not promoted")
	}
	if got := p.SelectAttrValue("class", ""); got != "fn-type-present-address" {
		t.Errorf("footnote class = %q", got)
	}
	if body.FindElement(".//fn") != nil {
		t.Error("fn element survived conversion")
	}
	// Paragraph-less and erratum footnotes disappear.
	if body.FindElement("./p[@id='fn2']") != nil || body.FindElement("./p[@id='fn3']") != nil {
		t.Error("removed footnote left a paragraph behind")
	}
}

func TestConvertBlocks(t *testing.T) {
	ctx := testContext()
	body := parseFragment(t, `<body xmlns:xlink="http://www.w3.org/1999/xlink">
		<p>Quote: <disp-quote id="q1"><p>So it goes.</p></disp-quote></p>
		<boxed-text id="b1"><sec><title>Box 1</title><p>Aside.</p></sec></boxed-text>
		<verse-group><title>Ode</title><verse-line>line one</verse-line></verse-group>
		<disp-formula id="eq1"><label>(1)</label><graphic xlink:href="10.1371/journal.pone.0000001.e001"/></disp-formula>
		<p>inline <inline-formula><inline-graphic xlink:href="10.1371/journal.pone.0000001.e002"/></inline-formula></p>
	</body>`)
	convertDispQuotes(body)
	convertBoxedText(body)
	convertVerseGroups(body)
	ctx.convertDispFormulas(body)
	ctx.convertInlineFormulas(body)

	if body.FindElement("./div[@class='disp-quote']") == nil {
		t.Error("disp-quote not elevated to a body-level div")
	}
	box := body.FindElement(".//div[@class='boxed-text']")
	if box == nil {
		t.Fatal("boxed-text not converted")
	}
	if b := box.SelectElement("b"); b == nil || b.Text() != "Box 1" {
		t.Error("box title not bolded")
	}
	if body.FindElement(".//p[@class='verse-line']") == nil {
		t.Error("verse-line not converted")
	}
	if body.FindElement(".//img[@alt='A Display Formula']") == nil {
		t.Error("display formula image missing")
	}
	inline := body.FindElement(".//span[@class='inline-formula']/img")
	if inline == nil {
		t.Fatal("inline formula image missing")
	}
	if got := inline.SelectAttrValue("src", ""); got != "images-journal.pone.0000001/e002.png" {
		t.Errorf("inline formula src = %q", got)
	}
}
