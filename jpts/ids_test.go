package jpts

import (
	"testing"

	"github.com/beevik/etree"
)

func TestSynthesizeIDs(t *testing.T) {
	article := mustParse(t, `<article>
  <front><article-meta><title-group><article-title>T</article-title></title-group></article-meta></front>
  <body>
    <sec id="s1">
      <title>One</title>
      <fig><graphic/></fig>
      <sec>
        <table-wrap><table/></table-wrap>
      </sec>
    </sec>
    <sec>
      <p>No id here either.</p>
    </sec>
  </body>
</article>`)

	ids := SynthesizeIDs(article.Body)
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}

	// Pre-order document position fixes the numbering.
	fig := article.Body.FindElement(".//fig")
	inner := article.Body.FindElement(".//table-wrap")
	second := article.Body.ChildElements()[1]
	if ids[fig] != "GEN-1" {
		t.Errorf("fig id = %q, want GEN-1", ids[fig])
	}
	if ids[inner] != "GEN-2" {
		t.Errorf("table-wrap id = %q, want GEN-2", ids[inner])
	}
	if ids[second] != "GEN-3" {
		t.Errorf("second sec id = %q, want GEN-3", ids[second])
	}

	// Existing ids are never reassigned, and the original tree is not
	// touched until ApplyIDs.
	s1 := article.Body.ChildElements()[0]
	if _, ok := ids[s1]; ok {
		t.Error("sec with explicit id was assigned a synthesized one")
	}
	if got := fig.SelectAttrValue("id", ""); got != "" {
		t.Errorf("SynthesizeIDs mutated the tree: fig id = %q", got)
	}
}

func TestSynthesizeIDsLockstep(t *testing.T) {
	// The transformer runs over a clone while navigation reads the
	// original; the same walk over both must agree by position.
	const body = `<article>
  <front><article-meta><title-group><article-title>T</article-title></title-group></article-meta></front>
  <body>
    <sec><title>A</title><fig><graphic/></fig></sec>
    <sec><title>B</title><table-wrap/></sec>
  </body>
</article>`
	article := mustParse(t, body)
	clone := article.Body.Copy()

	origIDs := SynthesizeIDs(article.Body)
	cloneIDs := SynthesizeIDs(clone)
	ApplyIDs(cloneIDs)

	// Walk both trees in parallel; structural twins must carry the same id.
	var walk func(orig, twin *etree.Element)
	walk = func(orig, twin *etree.Element) {
		oc, tc := orig.ChildElements(), twin.ChildElements()
		if len(oc) != len(tc) {
			t.Fatalf("<%s>: clone has %d children, original %d", orig.Tag, len(tc), len(oc))
		}
		for i := range oc {
			if isStructural(oc[i].Tag) {
				if got, want := tc[i].SelectAttrValue("id", ""), ElementID(oc[i], origIDs); got != want {
					t.Errorf("<%s>: clone id = %q, original id = %q", oc[i].Tag, got, want)
				}
			}
			walk(oc[i], tc[i])
		}
	}
	walk(article.Body, clone)
}

func TestElementID(t *testing.T) {
	e := etree.NewElement("sec")
	ids := map[*etree.Element]string{e: "GEN-1"}
	if got := ElementID(e, ids); got != "GEN-1" {
		t.Errorf("ElementID = %q, want synthesized GEN-1", got)
	}
	e.CreateAttr("id", "s9")
	if got := ElementID(e, ids); got != "s9" {
		t.Errorf("ElementID = %q, want explicit s9", got)
	}
}
