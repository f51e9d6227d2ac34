package ops

import (
	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// convertFigures replaces each <fig> with a horizontal-rule-delimited
// block of rendered image plus caption. A figure without a graphic cannot
// be rendered; it is logged and left in place so the conversion survives.
func (c *Context) convertFigures(top *etree.Element) {
	figs := top.FindElements(".//fig")
	for _, fig := range figs {
		elevate(fig)
	}
	for _, fig := range figs {
		graphic := fig.SelectElement("graphic")
		if graphic == nil {
			c.logger().Warn("figure has no graphic, leaving unconverted",
				"id", fig.SelectAttrValue("id", ""))
			continue
		}
		label := fig.SelectElement("label")
		caption := fig.SelectElement("caption")

		insertBefore(fig, newHR())

		img := etree.NewElement("img")
		img.CreateAttr("alt", "A Figure")
		img.CreateAttr("class", "figure")
		img.CreateAttr("src", c.Addr.ImagePath(graphic.SelectAttrValue("xlink:href", "")))
		if id := fig.SelectAttrValue("id", ""); id != "" {
			img.CreateAttr("id", id)
		}
		insertBefore(fig, img)

		if label != nil || caption != nil {
			insertBefore(fig, captionDiv("figure-caption", label, caption))
		}

		insertBefore(fig, newHR())
		jpts.Detach(fig)
	}
}

func newHR() *etree.Element {
	return etree.NewElement("hr")
}

// captionDiv builds the shared caption block for figures and tables: a
// bold run of "<label>. <caption title>" followed by the caption's
// paragraph content.
func captionDiv(class string, label, caption *etree.Element) *etree.Element {
	div := etree.NewElement("div")
	div.CreateAttr("class", class)

	b := div.CreateElement("b")
	if label != nil {
		jpts.CopyChildrenInto(b, label)
		b.CreateText(". ")
	}
	if caption != nil {
		if title := caption.SelectElement("title"); title != nil {
			jpts.CopyChildrenInto(b, title)
			b.CreateText(" ")
		}
		for _, p := range caption.SelectElements("p") {
			jpts.CopyChildrenInto(div, p)
		}
	}
	return div
}
