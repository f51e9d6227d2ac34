package ops

import (
	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// convertDispFormulas replaces <disp-formula> with either its rendered
// graphic or, when no graphic is deposited, a classed span of the math
// text. The label becomes a bold prefix in both shapes.
func (c *Context) convertDispFormulas(top *etree.Element) {
	for _, disp := range top.FindElements(".//disp-formula") {
		label := disp.SelectElement("label")
		graphic := disp.SelectElement("graphic")
		id := disp.SelectAttrValue("id", "")

		if graphic == nil {
			span := etree.NewElement("span")
			span.CreateAttr("class", "disp-formula")
			if id != "" {
				span.CreateAttr("id", id)
			}
			if label != nil {
				retag(label, "b")
				insertBefore(disp, jpts.Detach(label))
			}
			jpts.MoveChildrenInto(span, disp)
			insertBefore(disp, span)
			jpts.Detach(disp)
			continue
		}

		img := etree.NewElement("img")
		img.CreateAttr("alt", "A Display Formula")
		img.CreateAttr("class", "disp-formula")
		img.CreateAttr("src", c.Addr.ImagePath(graphic.SelectAttrValue("xlink:href", "")))
		if id != "" {
			img.CreateAttr("id", id)
		}
		if label != nil {
			retag(label, "b")
			insertBefore(disp, jpts.Detach(label))
		}
		insertBefore(disp, img)
		jpts.Detach(disp)
	}
}

// convertInlineFormulas rewrites <inline-formula> in place to a classed
// span, converting any <inline-graphic> inside it to an img.
func (c *Context) convertInlineFormulas(top *etree.Element) {
	for _, inline := range top.FindElements(".//inline-formula") {
		retag(inline, "span", "class", "inline-formula")
		graphic := inline.SelectElement("inline-graphic")
		if graphic == nil {
			continue
		}
		href := graphic.SelectAttrValue("xlink:href", "")
		retag(graphic, "img",
			"src", c.Addr.ImagePath(href),
			"class", "inline-formula",
			"alt", "An Inline Formula")
	}
}
