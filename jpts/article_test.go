package jpts

import (
	"errors"
	"strings"
	"testing"
)

const sampleArticle = `<?xml version="1.0" encoding="UTF-8"?>
<article xmlns:xlink="http://www.w3.org/1999/xlink" dtd-version="2.0" article-type="research-article">
  <front>
    <journal-meta>
      <journal-id journal-id-type="pmc">plosone</journal-id>
      <journal-title-group>
        <journal-title>PLoS ONE</journal-title>
      </journal-title-group>
      <publisher>
        <publisher-name>Public Library of Science</publisher-name>
      </publisher>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="doi">10.1371/journal.pone.0035956</article-id>
      <article-id pub-id-type="pmid">22558281</article-id>
      <title-group>
        <article-title>Regulation of <italic>Something</italic> in Mice</article-title>
      </title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <name><surname>Harper</surname><given-names>Lena</given-names></name>
          <xref ref-type="aff" rid="aff1"><sup>1</sup></xref>
          <xref ref-type="corresp" rid="cor1"><sup>*</sup></xref>
        </contrib>
        <contrib contrib-type="author">
          <collab>The Mouse Consortium</collab>
        </contrib>
        <contrib contrib-type="editor">
          <name><surname>Okafor</surname><given-names>Chidi</given-names></name>
        </contrib>
        <aff id="aff1"><addr-line>Institute of Examples, Lund, Sweden</addr-line></aff>
      </contrib-group>
      <author-notes>
        <corresp id="cor1">* E-mail: <email>lena.harper@example.org</email></corresp>
        <fn fn-type="conflict"><p>The authors have declared that no competing interests exist.</p></fn>
      </author-notes>
      <pub-date pub-type="epub">
        <day>27</day><month>4</month><year>2012</year>
      </pub-date>
      <history>
        <date date-type="received"><day>2</day><month>1</month><year>2012</year></date>
        <date date-type="accepted"><day>24</day><month>3</month><year>2012</year></date>
      </history>
      <permissions>
        <copyright-year>2012</copyright-year>
        <copyright-holder>Harper et al</copyright-holder>
        <license>
          <license-p>This is an open-access article distributed under the terms of the Creative Commons Attribution License.</license-p>
        </license>
      </permissions>
      <abstract>
        <p>We report a finding.</p>
      </abstract>
      <abstract abstract-type="summary">
        <p>A plain-language summary.</p>
      </abstract>
      <funding-group>
        <funding-statement>This work was funded by grant 42.</funding-statement>
      </funding-group>
      <kwd-group>
        <kwd>mice</kwd>
        <kwd>regulation</kwd>
      </kwd-group>
    </article-meta>
  </front>
  <body>
    <sec id="s1">
      <title>Introduction</title>
      <p>Opening text with a figure ref <xref ref-type="fig" rid="f1">Figure 1</xref>.</p>
      <fig id="f1">
        <label>Figure 1</label>
        <caption><title>A demonstration.</title><p>Caption body.</p></caption>
        <graphic xlink:href="journal.pone.0035956.g001"/>
      </fig>
      <sec>
        <title>Subsection</title>
        <p>More text.</p>
        <table-wrap id="t1">
          <label>Table 1</label>
          <caption><title>Measurements.</title></caption>
          <alternatives>
            <graphic xlink:href="journal.pone.0035956.t001"/>
            <table><tr><td>1</td></tr></table>
          </alternatives>
        </table-wrap>
      </sec>
    </sec>
  </body>
  <back>
    <ref-list>
      <ref id="ref1"><label>1</label><mixed-citation>Doe J (2010) A prior result. J Example 1: 1-2.</mixed-citation></ref>
    </ref-list>
  </back>
</article>`

func mustParse(t *testing.T, xml string) *Article {
	t.Helper()
	article, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return article
}

func TestParse(t *testing.T) {
	article := mustParse(t, sampleArticle)

	if article.DOI != "10.1371/journal.pone.0035956" {
		t.Errorf("DOI = %q", article.DOI)
	}
	if got := article.DOIFragment(); got != "journal.pone.0035956" {
		t.Errorf("DOIFragment() = %q", got)
	}
	if article.Publisher != PublisherPLoS {
		t.Errorf("Publisher = %v, want PLoS", article.Publisher)
	}
	if article.DTDVersion != "2.0" {
		t.Errorf("DTDVersion = %q", article.DTDVersion)
	}
	if article.Body == nil {
		t.Fatal("Body is nil")
	}
	if !article.HasReferences() {
		t.Error("HasReferences() = false, want true")
	}
	if !article.HasHTMLTables() {
		t.Error("HasHTMLTables() = false, want true")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want error
	}{
		{
			name: "no front",
			xml:  `<article><body><p>text</p></body></article>`,
			want: ErrNoFront,
		},
		{
			name: "no title group",
			xml:  `<article><front><article-meta><article-id pub-id-type="doi">10.1371/x.y</article-id></article-meta></front></article>`,
			want: ErrNoTitleGroup,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.xml))
			if !errors.Is(err, tc.want) {
				t.Errorf("Parse error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseNotArticle(t *testing.T) {
	_, err := Parse([]byte(`<book><front/></book>`))
	if err == nil || !strings.Contains(err.Error(), "article") {
		t.Errorf("Parse error = %v, want root element complaint", err)
	}
}

func TestDetectPublisher(t *testing.T) {
	tests := []struct {
		doi  string
		want Publisher
	}{
		{"10.1371/journal.pone.0035956", PublisherPLoS},
		{"10.3389/fimmu.2012.00104", PublisherFrontiers},
		{"10.1000/other", PublisherUnknown},
		{"", PublisherUnknown},
	}
	for _, tc := range tests {
		if got := detectPublisher(tc.doi); got != tc.want {
			t.Errorf("detectPublisher(%q) = %v, want %v", tc.doi, got, tc.want)
		}
	}
}

func TestHasHTMLTablesGraphicOnly(t *testing.T) {
	article := mustParse(t, `<article xmlns:xlink="http://www.w3.org/1999/xlink">
  <front><article-meta><title-group><article-title>T</article-title></title-group></article-meta></front>
  <body>
    <table-wrap id="t1"><graphic xlink:href="x.t001"/></table-wrap>
  </body>
</article>`)
	if article.HasHTMLTables() {
		t.Error("HasHTMLTables() = true for graphic-only table-wrap")
	}
}
