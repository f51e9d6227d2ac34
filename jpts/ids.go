package jpts

import (
	"fmt"

	"github.com/beevik/etree"
)

// Structural elements that receive synthesized ids when the source omits
// them. Both the content transformer and the navigation builder address
// these by id.
func isStructural(tag string) bool {
	switch tag {
	case "sec", "fig", "table-wrap":
		return true
	}
	return false
}

// SynthesizeIDs walks the container in document order and assigns an id of
// the form "GEN-<n>" to every structural element that lacks one, using a
// single counter for the whole walk. It does not mutate the tree: the
// result maps elements to their synthesized ids.
//
// The content transformer applies the result to its clone while the
// navigation builder consults it against the original, so the two stay in
// lockstep by construction: the same pure function over structurally
// identical trees yields the same ids by position.
func SynthesizeIDs(container *etree.Element) map[*etree.Element]string {
	ids := make(map[*etree.Element]string)
	n := 0
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if isStructural(child.Tag) && child.SelectAttrValue("id", "") == "" {
				n++
				ids[child] = fmt.Sprintf("GEN-%d", n)
			}
			walk(child)
		}
	}
	walk(container)
	return ids
}

// ApplyIDs writes synthesized ids onto their elements. Only the content
// transformer calls this, and only on its clone.
func ApplyIDs(ids map[*etree.Element]string) {
	for e, id := range ids {
		e.CreateAttr("id", id)
	}
}

// ElementID returns the element's id attribute, falling back to the
// synthesized assignment.
func ElementID(e *etree.Element, ids map[*etree.Element]string) string {
	if id := e.SelectAttrValue("id", ""); id != "" {
		return id
	}
	return ids[e]
}
