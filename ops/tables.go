package ops

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// wrapGraphic finds the rendered graphic of a table-wrap, directly or
// inside <alternatives>.
func wrapGraphic(wrap *etree.Element) *etree.Element {
	if g := wrap.SelectElement("graphic"); g != nil {
		return g
	}
	if alt := wrap.SelectElement("alternatives"); alt != nil {
		return alt.SelectElement("graphic")
	}
	return nil
}

// wrapTable finds the native table of a table-wrap, directly or inside
// <alternatives>.
func wrapTable(wrap *etree.Element) *etree.Element {
	if t := wrap.SelectElement("table"); t != nil {
		return t
	}
	if alt := wrap.SelectElement("alternatives"); alt != nil {
		return alt.SelectElement("table")
	}
	return nil
}

// convertTableWraps replaces each <table-wrap> with its caption and
// rendered image. Any native <table> is moved to the pending list for the
// table appendix, with an anchor linking to it from the inline position.
// A wrap without a graphic is logged and left unconverted, same as
// figures.
func (c *Context) convertTableWraps(top *etree.Element) {
	for _, wrap := range top.FindElements(".//table-wrap") {
		elevate(wrap)
	}
	for _, wrap := range top.FindElements(".//table-wrap") {
		id := wrap.SelectAttrValue("id", "")
		graphic := wrapGraphic(wrap)
		if graphic == nil {
			c.logger().Warn("table-wrap has no graphic, leaving unconverted", "id", id)
			continue
		}
		label := wrap.SelectElement("label")
		caption := wrap.SelectElement("caption")
		table := wrapTable(wrap)

		insertBefore(wrap, newHR())

		if label != nil || caption != nil {
			insertBefore(wrap, captionDiv("table-caption", label, caption))
		}

		img := etree.NewElement("img")
		img.CreateAttr("alt", "A Table")
		img.CreateAttr("class", "table")
		img.CreateAttr("src", c.Addr.ImagePath(graphic.SelectAttrValue("xlink:href", "")))
		if id != "" {
			img.CreateAttr("id", id)
		}
		insertBefore(wrap, img)

		if table != nil {
			table = jpts.Detach(table)
			table.CreateAttr("id", id)
			if label != nil {
				table.CreateAttr("label", strings.TrimSpace(jpts.TextContent(label)))
			}
			c.PendingTables = append(c.PendingTables, table)
			if foot := wrap.SelectElement("table-wrap-foot"); foot != nil {
				c.PendingTables = append(c.PendingTables, jpts.Detach(foot))
			}

			link := etree.NewElement("a")
			link.CreateAttr("href", c.Addr.Fragment(RoleTables, id))
			link.SetText("HTML version of this table")
			insertBefore(wrap, link)
		}

		insertBefore(wrap, newHR())
		jpts.Detach(wrap)
	}
}
