package ops

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
)

// convertEmphasis rewrites the JPTS emphasis elements to their XHTML
// analogues. None of them carry attributes worth keeping.
func convertEmphasis(top *etree.Element) {
	for _, e := range top.FindElements(".//bold") {
		retag(e, "b")
	}
	for _, e := range top.FindElements(".//italic") {
		retag(e, "i")
	}
	for _, e := range top.FindElements(".//monospace") {
		retag(e, "span", "style", "font-family:monospace")
	}
	for _, e := range top.FindElements(".//overline") {
		retag(e, "span", "style", "text-decoration:overline")
	}
	for _, e := range top.FindElements(".//sans-serif") {
		retag(e, "span", "style", "font-family:sans-serif")
	}
	for _, e := range top.FindElements(".//sc") {
		retag(e, "span", "style", "font-variant:small-caps")
	}
	for _, e := range top.FindElements(".//strike") {
		retag(e, "span", "style", "text-decoration:line-through")
	}
	for _, e := range top.FindElements(".//underline") {
		retag(e, "span", "style", "text-decoration:underline")
	}
}

// convertNamedContent turns <named-content> into a span classed by its
// content-type, so the stylesheet can pick up taxon names and the like.
func convertNamedContent(top *etree.Element) {
	for _, nc := range top.FindElements(".//named-content") {
		contentType := nc.SelectAttrValue("content-type", "")
		if contentType != "" {
			retag(nc, "span", "class", contentType)
		} else {
			retag(nc, "span")
		}
	}
}

// convertAddressLinking rewrites <email>, <ext-link> and <uri> to anchors.
// The address comes from xlink:href when declared, otherwise from the
// element's own text.
func convertAddressLinking(top *etree.Element) {
	for _, email := range top.FindElements(".//email") {
		addr := strings.TrimSpace(jpts.TextContent(email))
		retag(email, "a", "href", "mailto:"+addr)
	}
	for _, link := range top.FindElements(".//ext-link") {
		href := link.SelectAttrValue("xlink:href", "")
		if href == "" {
			href = strings.TrimSpace(jpts.TextContent(link))
		}
		id := link.SelectAttrValue("id", "")
		retag(link, "a", "href", href)
		if id != "" {
			link.CreateAttr("id", id)
		}
	}
	for _, uri := range top.FindElements(".//uri") {
		href := uri.SelectAttrValue("xlink:href", "")
		if href == "" {
			href = strings.TrimSpace(jpts.TextContent(uri))
		}
		retag(uri, "a", "href", href)
	}
}
