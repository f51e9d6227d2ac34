package ops

import (
	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// convertDispQuotes turns extended quotations into classed divs, elevating
// them out of paragraph parents first.
func convertDispQuotes(top *etree.Element) {
	for _, quote := range top.FindElements(".//disp-quote") {
		elevate(quote)
		id := quote.SelectAttrValue("id", "")
		retag(quote, "div", "class", "disp-quote")
		if id != "" {
			quote.CreateAttr("id", id)
		}
	}
}

// convertBoxedText handles sidebar boxes. PLoS wraps the box content in a
// single <sec>; when present that sec becomes the box div, otherwise the
// boxed-text element itself does.
func convertBoxedText(top *etree.Element) {
	for _, box := range top.FindElements(".//boxed-text") {
		id := box.SelectAttrValue("id", "")
		if sec := box.SelectElement("sec"); sec != nil {
			if title := sec.SelectElement("title"); title != nil {
				retag(title, "b")
			}
			retag(sec, "div", "class", "boxed-text")
			if id != "" {
				sec.CreateAttr("id", id)
			}
			insertBefore(box, jpts.Detach(sec))
			jpts.Detach(box)
			continue
		}
		retag(box, "div", "class", "boxed-text")
		if id != "" {
			box.CreateAttr("id", id)
		}
	}
}

// convertVerseGroups renders poetry blocks: label/title/subtitle collapse
// into one bold heading, verse-lines become classed paragraphs.
func convertVerseGroups(top *etree.Element) {
	for _, group := range top.FindElements(".//verse-group") {
		label := group.SelectElement("label")
		title := group.SelectElement("title")
		subtitle := group.SelectElement("subtitle")

		retag(group, "div", "class", "verse-group")
		if label != nil || title != nil || subtitle != nil {
			heading := etree.NewElement("b")
			for _, part := range []*etree.Element{label, title, subtitle} {
				if part == nil {
					continue
				}
				jpts.MoveChildrenInto(heading, part)
				jpts.Detach(part)
			}
			group.InsertChildAt(0, heading)
		}
		for _, line := range group.FindElements(".//verse-line") {
			retag(line, "p", "class", "verse-line")
		}
	}
}
