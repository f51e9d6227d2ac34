package ops

import (
	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// convertSections retags <sec> as <div>, mapping sec-type to a class. Ids
// were already assigned by the synthesized-id pass, so every division is
// addressable.
func convertSections(body *etree.Element) {
	for _, sec := range body.FindElements(".//sec") {
		id := sec.SelectAttrValue("id", "")
		secType := sec.SelectAttrValue("sec-type", "")
		retag(sec, "div")
		if secType != "" {
			sec.CreateAttr("class", secType)
		}
		if id != "" {
			sec.CreateAttr("id", id)
		}
	}
}

// divHeadings converts <title> children of divisions into headers sized by
// nesting depth, h2 through h6. Beyond that the title becomes a classed
// span rather than an invalid header tag. Labels fold into the title text,
// or render bold when there is no title.
func divHeadings(parent *etree.Element, depth int) {
	headerTags := []string{"h2", "h3", "h4", "h5", "h6"}
	for _, div := range parent.SelectElements("div") {
		label := div.SelectElement("label")
		if label != nil && len(label.Child) == 0 {
			jpts.Detach(label)
			label = nil
		}
		title := div.SelectElement("title")
		if title != nil && len(title.Child) == 0 {
			jpts.Detach(title)
			title = nil
		}
		switch {
		case title != nil:
			if depth < len(headerTags) {
				title.Tag = headerTags[depth]
			} else {
				title.Tag = "span"
				title.CreateAttr("class", "heading-deep")
			}
			if label != nil {
				prefix := jpts.TextContent(label)
				title.InsertChildAt(0, etree.NewText(prefix+" "))
				jpts.Detach(label)
			}
		case label != nil:
			retag(label, "b")
		}
		divHeadings(div, depth+1)
	}
}
