package ops

import (
	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// retag renames an element in place, keeping children, and replaces its
// attributes with the given key/value pairs.
func retag(e *etree.Element, tag string, attrs ...string) {
	e.Tag = tag
	e.Space = ""
	jpts.RemoveAllAttrs(e)
	for i := 0; i+1 < len(attrs); i += 2 {
		e.CreateAttr(attrs[i], attrs[i+1])
	}
}

// insertBefore places el as target's immediately preceding sibling.
// Repeated calls with the same target append in order.
func insertBefore(target *etree.Element, el *etree.Element) {
	target.Parent().InsertChildAt(target.Index(), el)
}

// insertAfter places el as target's immediately following sibling.
func insertAfter(target *etree.Element, el *etree.Element) {
	target.Parent().InsertChildAt(target.Index()+1, el)
}

// elevate moves a block element out of a <p> parent, making it the
// paragraph's following sibling. XHTML forbids block content inside p, but
// JPTS allows figures and tables there.
func elevate(e *etree.Element) {
	parent := e.Parent()
	if parent == nil || parent.Tag != "p" {
		return
	}
	grand := parent.Parent()
	if grand == nil {
		return
	}
	jpts.Detach(e)
	grand.InsertChildAt(parent.Index()+1, e)
}

// replaceWithChildren unwraps an element, splicing its child tokens into
// the parent at its position.
func replaceWithChildren(e *etree.Element) {
	parent := e.Parent()
	if parent == nil {
		return
	}
	at := e.Index()
	parent.RemoveChild(e)
	for len(e.Child) > 0 {
		parent.InsertChildAt(at, e.Child[0])
		at++
	}
}
