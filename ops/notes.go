package ops

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/images"
	"github.com/oaepub/oaepub/jpts"
)

// convertFootnotes promotes each in-body <fn> to its first paragraph,
// carrying the id and a class derived from fn-type. Corrected erratum
// notes are dropped entirely, matching publisher practice of hiding them
// once the text is fixed.
func convertFootnotes(top *etree.Element) {
	for _, fn := range top.FindElements(".//fn") {
		p := fn.SelectElement("p")
		if p == nil {
			jpts.Detach(fn)
			continue
		}
		text := jpts.TextContent(p)
		if strings.HasPrefix(text, "Erratum") && strings.Contains(text, "Corrected") {
			jpts.Detach(fn)
			continue
		}
		if id := fn.SelectAttrValue("id", ""); id != "" {
			p.CreateAttr("id", id)
		}
		if fnType := fn.SelectAttrValue("fn-type", ""); fnType != "" {
			p.CreateAttr("class", "fn-type-"+fnType)
		} else {
			p.CreateAttr("class", "fn")
		}
		insertBefore(fn, jpts.Detach(p))
		jpts.Detach(fn)
	}
}

// convertSupplementaryMaterial links supplementary items to the
// publisher's online copy rather than packaging them: the label becomes an
// external anchor and the caption follows in a div.
func (c *Context) convertSupplementaryMaterial(top *etree.Element) {
	for _, suppl := range top.FindElements(".//supplementary-material") {
		div := etree.NewElement("div")
		if id := suppl.SelectAttrValue("id", ""); id != "" {
			div.CreateAttr("id", id)
		}
		insertBefore(suppl, div)

		href := suppl.SelectAttrValue("xlink:href", "")
		resourceURL := images.SingleRepresentationURL(c.Addr.DOIFragment, href)

		if label := suppl.SelectElement("label"); label != nil {
			retag(label, "a", "href", resourceURL)
			label.CreateText(". ")
			div.AddChild(jpts.Detach(label))
		}
		if caption := suppl.SelectElement("caption"); caption != nil {
			if title := caption.SelectElement("title"); title != nil {
				retag(title, "b")
				div.AddChild(jpts.Detach(title))
			}
			for _, p := range caption.SelectElements("p") {
				div.AddChild(jpts.Detach(p))
			}
		}
		jpts.Detach(suppl)
	}
}
