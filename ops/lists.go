package ops

import (
	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

var orderedListTypes = map[string]bool{
	"order":       true,
	"alpha-lower": true,
	"alpha-upper": true,
	"roman-lower": true,
	"roman-upper": true,
}

// convertLists rewrites <list> to ul/ol by list-type. Unrecognized types
// degrade to an unordered list with a logged warning.
func (c *Context) convertLists(top *etree.Element) {
	for _, list := range top.FindElements(".//list") {
		elevate(list)
	}
	for _, list := range top.FindElements(".//list") {
		listType := list.SelectAttrValue("list-type", "")
		id := list.SelectAttrValue("id", "")
		switch {
		case listType == "" || listType == "bullet" || listType == "simple":
			retag(list, "ul")
			if listType == "simple" {
				list.CreateAttr("class", "simple")
			}
		case orderedListTypes[listType]:
			retag(list, "ol", "class", listType)
		default:
			c.logger().Warn("unrecognized list-type, rendering unordered",
				"list-type", listType)
			retag(list, "ul")
		}
		if id != "" {
			list.CreateAttr("id", id)
		}
		for _, item := range list.SelectElements("list-item") {
			retag(item, "li")
		}
	}
}

// convertDefLists renders definition lists as a classed div of
// term/definition paragraph pairs.
func (c *Context) convertDefLists(top *etree.Element) {
	for _, defList := range top.FindElements(".//def-list") {
		id := defList.SelectAttrValue("id", "")
		retag(defList, "div", "class", "def-list")
		if id != "" {
			defList.CreateAttr("id", id)
		}
		for _, item := range defList.SelectElements("def-item") {
			// An item with no definition is dropped whole; emitting its
			// term first would orphan it in the output.
			def := item.SelectElement("def")
			if def == nil {
				c.logger().Warn("def-item without def element")
				jpts.Detach(item)
				continue
			}
			if term := item.SelectElement("term"); term != nil {
				retag(term, "p", "class", "def-item-term")
				insertBefore(item, jpts.Detach(term))
			}
			if para := def.SelectElement("p"); para != nil {
				para.CreateAttr("class", "def-item-def")
				insertBefore(item, jpts.Detach(para))
			}
			jpts.Detach(item)
		}
	}
}

// convertRefLists handles reference lists appearing inside the body, as
// opposed to the back-matter bibliography. Each ref is flattened to its
// text content.
func convertRefLists(top *etree.Element) {
	for _, refList := range top.FindElements(".//ref-list") {
		retag(refList, "div", "class", "ref-list")
		if label := refList.SelectElement("label"); label != nil {
			retag(label, "h3")
		}
		for _, ref := range refList.SelectElements("ref") {
			p := etree.NewElement("p")
			p.SetText(jpts.TextContent(ref))
			insertBefore(ref, p)
			jpts.Detach(ref)
		}
	}
}
