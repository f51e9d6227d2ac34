package ncx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"
)

// Generator is the dtb:generator meta value written into toc.ncx.
const Generator = "oaepub"

// Document serializes the TOC as a toc.ncx element tree.
func Document(toc *TOC, docAuthor string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(`DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN" "http://www.daisy.org/z3986/2005/ncx-2005-1.dtd"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")
	ncx.CreateAttr("xml:lang", "en-US")

	head := ncx.CreateElement("head")
	meta(head, "dtb:uid", toc.DOI)
	meta(head, "dtb:depth", strconv.Itoa(toc.Depth))
	meta(head, "dtb:totalPageCount", "0")
	meta(head, "dtb:maxPageNumber", "0")
	meta(head, "dtb:generator", Generator)

	docTitle := ncx.CreateElement("docTitle")
	docTitle.CreateElement("text").SetText("NCX For: " + toc.DOI)
	author := ncx.CreateElement("docAuthor")
	author.CreateElement("text").SetText(docAuthor)

	navMap := ncx.CreateElement("navMap")
	label := navMap.CreateElement("navLabel")
	label.CreateElement("text").SetText("Table of Contents")
	for _, point := range toc.NavMap {
		navMap.AddChild(navPointElement(point))
	}

	if len(toc.Figures) > 0 {
		ncx.AddChild(navList("lof", "List of Figures", toc.Figures))
	}
	if len(toc.Tables) > 0 {
		ncx.AddChild(navList("lot", "List of Tables", toc.Tables))
	}

	doc.Indent(2)
	return doc
}

// WriteFile serializes the TOC to opsDir/toc.ncx.
func WriteFile(toc *TOC, docAuthor, opsDir string) error {
	doc := Document(toc, docAuthor)
	path := filepath.Join(opsDir, "toc.ncx")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ncx: create toc.ncx: %w", err)
	}
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("ncx: write toc.ncx: %w", err)
	}
	return nil
}

func meta(head *etree.Element, name, content string) {
	m := head.CreateElement("meta")
	m.CreateAttr("name", name)
	m.CreateAttr("content", content)
}

func navPointElement(point *NavPoint) *etree.Element {
	nav := etree.NewElement("navPoint")
	nav.CreateAttr("id", point.ID)
	nav.CreateAttr("playOrder", strconv.Itoa(point.PlayOrder))
	label := nav.CreateElement("navLabel")
	label.CreateElement("text").SetText(point.Label)
	content := nav.CreateElement("content")
	content.CreateAttr("src", point.Source)
	for _, child := range point.Children {
		nav.AddChild(navPointElement(child))
	}
	return nav
}

func navList(id, title string, points []*NavPoint) *etree.Element {
	list := etree.NewElement("navList")
	list.CreateAttr("class", id)
	list.CreateAttr("id", id)
	label := list.CreateElement("navLabel")
	label.CreateElement("text").SetText(title)
	for _, point := range points {
		target := list.CreateElement("navTarget")
		target.CreateAttr("id", point.ID)
		target.CreateAttr("playOrder", strconv.Itoa(point.PlayOrder))
		lbl := target.CreateElement("navLabel")
		lbl.CreateElement("text").SetText(point.Label)
		content := target.CreateElement("content")
		content.CreateAttr("src", point.Source)
	}
	return list
}
