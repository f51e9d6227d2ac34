package ops

import "github.com/beevik/etree"

// convertXrefs turns internal cross-references into anchors addressing the
// content document that holds the target. An xref whose ref-type has no
// target document is left as inert text in a span; the conversion keeps
// going.
func (c *Context) convertXrefs(top *etree.Element) {
	for _, xref := range top.FindElements(".//xref") {
		refType := xref.SelectAttrValue("ref-type", "")
		rid := xref.SelectAttrValue("rid", "")
		role, err := RoleForRefType(refType)
		if err != nil {
			c.logger().Warn("cross-reference left unlinked", "ref-type", refType, "rid", rid)
			retag(xref, "span")
			continue
		}
		retag(xref, "a", "href", c.Addr.Fragment(role, rid))
	}
}
