// Package ncx builds the toc.ncx navigation document: a navMap over the
// article's division structure plus optional lists of figures and tables,
// all sharing one play order.
package ncx

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/oaepub/oaepub/jpts"
	"github.com/oaepub/oaepub/ops"
)

// NavPoint is one navigation entry. Entries in the navMap may nest;
// entries in the figure and table lists are flat.
type NavPoint struct {
	ID        string
	Label     string
	Source    string
	PlayOrder int
	Children  []*NavPoint
}

// TOC is the complete navigation structure for one article.
type TOC struct {
	DOI     string
	NavMap  []*NavPoint
	Figures []*NavPoint
	Tables  []*NavPoint

	// Depth is the deepest navMap nesting level.
	Depth int
}

// Builder assembles a TOC from a parsed article. The zero value is ready
// to use.
type Builder struct {
	addr      ops.Addresser
	ids       map[*etree.Element]string
	playOrder int
	maxDepth  int

	figures []*NavPoint
	tables  []*NavPoint
}

// next draws the shared play-order counter. Every entry in the navMap and
// both lists goes through here, so reading order is globally consistent.
func (b *Builder) next() int {
	b.playOrder++
	return b.playOrder
}

// Build walks the article's original body read-only and produces the
// navigation structure. Generated division ids come from the same
// assignment the content transformer applies to its clone.
func (b *Builder) Build(article *jpts.Article) *TOC {
	b.addr = ops.Addresser{DOIFragment: article.DOIFragment()}
	b.playOrder = 0
	b.maxDepth = 0
	b.figures = nil
	b.tables = nil

	toc := &TOC{DOI: article.DOI}

	toc.NavMap = append(toc.NavMap, &NavPoint{
		ID:        "titlepage",
		Label:     "Title",
		Source:    b.addr.Fragment(ops.RoleHeading, "title"),
		PlayOrder: b.next(),
	})
	b.maxDepth = 1

	if article.Body != nil {
		b.ids = jpts.SynthesizeIDs(article.Body)
		toc.NavMap = append(toc.NavMap, b.walk(article.Body, 1)...)
	}

	if article.HasReferences() {
		toc.NavMap = append(toc.NavMap, &NavPoint{
			ID:        "references",
			Label:     "References",
			Source:    b.addr.Fragment(ops.RoleBiblio, "references"),
			PlayOrder: b.next(),
		})
	}

	toc.Figures = b.figures
	toc.Tables = b.tables
	toc.Depth = b.maxDepth
	return toc
}

// walk visits the direct children of parent, emitting entries for
// divisions, figures, and table wraps, and recursing only into matched
// elements.
func (b *Builder) walk(parent *etree.Element, depth int) []*NavPoint {
	var points []*NavPoint
	for _, child := range parent.ChildElements() {
		switch child.Tag {
		case "sec":
			// Only navPoints count toward dtb:depth; recursions that
			// merely collect figures and tables do not nest the navMap.
			if depth > b.maxDepth {
				b.maxDepth = depth
			}
			point := b.newPoint(child)
			point.Children = b.walk(child, depth+1)
			points = append(points, point)
		case "fig":
			b.figures = append(b.figures, b.newPoint(child))
			b.walk(child, depth+1)
		case "table-wrap":
			// A wrap with no renderable graphic produces no content, so
			// it gets no entry either.
			if child.SelectElement("graphic") == nil && child.SelectElement("alternatives") == nil {
				continue
			}
			b.tables = append(b.tables, b.newPoint(child))
			b.walk(child, depth+1)
		}
	}
	return points
}

func (b *Builder) newPoint(el *etree.Element) *NavPoint {
	id := jpts.ElementID(el, b.ids)
	label := ""
	if title := el.FindElement(".//title"); title != nil {
		label = strings.TrimSpace(jpts.TextContent(title))
	}
	if label == "" {
		label = id
	}
	return &NavPoint{
		ID:        id,
		Label:     label,
		Source:    b.addr.Fragment(ops.RoleMain, id),
		PlayOrder: b.next(),
	}
}
