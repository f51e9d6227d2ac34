package jpts

import (
	"strings"

	"github.com/beevik/etree"
)

// Contributor is one <contrib> entry from a contrib-group.
type Contributor struct {
	// Type is the contrib-type attribute, typically "author" or "editor".
	Type string

	Surname string
	Given   string

	// Collab is set instead of a personal name for group authorship.
	Collab *etree.Element

	Anonymous bool

	Xrefs []ContribXref
}

// ContribXref links a contributor to an affiliation or footnote.
type ContribXref struct {
	RefType string
	RID     string
	// Sup is the superscript marker text shown next to the name, when the
	// xref carries one.
	Sup string
}

// DisplayName renders the contributor for byline text.
func (c Contributor) DisplayName() string {
	if c.Collab != nil {
		return strings.TrimSpace(TextContent(c.Collab))
	}
	if c.Anonymous {
		return "Anonymous"
	}
	if c.Given == "" {
		return c.Surname
	}
	return c.Given + " " + c.Surname
}

// FileAs renders the name inverted for sorting ("Surname, Given").
func (c Contributor) FileAs() string {
	if c.Collab != nil {
		return strings.TrimSpace(TextContent(c.Collab))
	}
	if c.Given == "" {
		return c.Surname
	}
	return c.Surname + ", " + c.Given
}

func parseContrib(e *etree.Element) Contributor {
	c := Contributor{Type: e.SelectAttrValue("contrib-type", "")}

	// The 3.0 tagset allows <name> wrapped in <name-alternatives>, and
	// older depositions use <string-name>; accept all three.
	name := e.SelectElement("name")
	if name == nil {
		if alts := e.SelectElement("name-alternatives"); alts != nil {
			name = alts.SelectElement("name")
		}
	}
	if name == nil {
		name = e.SelectElement("string-name")
	}

	switch {
	case name != nil:
		if sn := name.SelectElement("surname"); sn != nil {
			c.Surname = strings.TrimSpace(TextContent(sn))
		}
		if gn := name.SelectElement("given-names"); gn != nil {
			c.Given = strings.TrimSpace(TextContent(gn))
		}
		// A bare string-name has no name parts; keep its full text.
		if c.Surname == "" && c.Given == "" {
			c.Surname = strings.TrimSpace(TextContent(name))
		}
	case e.SelectElement("collab") != nil:
		c.Collab = e.SelectElement("collab")
	case e.SelectElement("anonymous") != nil:
		c.Anonymous = true
	}

	for _, xref := range e.SelectElements("xref") {
		cx := ContribXref{
			RefType: xref.SelectAttrValue("ref-type", ""),
			RID:     xref.SelectAttrValue("rid", ""),
		}
		if sup := xref.SelectElement("sup"); sup != nil {
			cx.Sup = strings.TrimSpace(TextContent(sup))
		} else {
			cx.Sup = strings.TrimSpace(TextContent(xref))
		}
		c.Xrefs = append(c.Xrefs, cx)
	}

	return c
}
