package jpts

import (
	"strings"

	"github.com/beevik/etree"
)

// TextContent returns the concatenation of all character data beneath the
// element, in document order.
func TextContent(e *etree.Element) string {
	var sb strings.Builder
	collectText(e, &sb)
	return sb.String()
}

func collectText(e *etree.Element, sb *strings.Builder) {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			collectText(t, sb)
		}
	}
}

// CopyChildrenInto appends deep copies of src's child tokens (elements and
// character data alike) to dst, preserving order and leaving src untouched.
func CopyChildrenInto(dst, src *etree.Element) {
	for _, tok := range src.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			dst.CreateText(t.Data)
		case *etree.Element:
			dst.AddChild(t.Copy())
		}
	}
}

// MoveChildrenInto reparents src's child tokens to dst, preserving order.
func MoveChildrenInto(dst, src *etree.Element) {
	for len(src.Child) > 0 {
		dst.AddChild(src.Child[0])
	}
}

// RemoveAllAttrs strips every attribute from the element.
func RemoveAllAttrs(e *etree.Element) {
	for len(e.Attr) > 0 {
		e.RemoveAttr(e.Attr[0].FullKey())
	}
}

// Detach removes the element from its parent, if it has one, and returns it.
func Detach(e *etree.Element) *etree.Element {
	if p := e.Parent(); p != nil {
		p.RemoveChild(e)
	}
	return e
}
