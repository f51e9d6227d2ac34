// Package jpts provides parsing of NLM/JPTS journal article XML into an
// element tree plus a typed front-matter model. The element tree is owned
// by a single conversion run: the navigation builder walks it read-only,
// and the content transformer clones before mutating.
package jpts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/oaepub/oaepub/xmlenc"
)

var (
	// ErrNoFront marks an article without front matter. This is the only
	// structural defect that aborts a whole conversion.
	ErrNoFront = errors.New("jpts: article has no front matter")
	// ErrNoTitleGroup marks front matter without a title-group.
	ErrNoTitleGroup = errors.New("jpts: front matter has no title-group")
)

// Publisher identifies the article's publisher dialect.
type Publisher int

const (
	PublisherUnknown Publisher = iota
	PublisherPLoS
	PublisherFrontiers
)

func (p Publisher) String() string {
	switch p {
	case PublisherPLoS:
		return "PLoS"
	case PublisherFrontiers:
		return "Frontiers"
	default:
		return "Unknown"
	}
}

// Article is a parsed journal article. Front is always present; Body and
// Back may be nil.
type Article struct {
	Doc  *etree.Document
	Root *etree.Element

	Front *etree.Element
	Body  *etree.Element
	Back  *etree.Element

	Metadata *Metadata

	DOI        string
	DTDVersion string
	Publisher  Publisher

	// FallbackID stands in for the DOI fragment when the article carries
	// no DOI. The converter assigns one before any output paths are
	// derived, so every consumer of DOIFragment names files consistently.
	FallbackID string
}

// Parse reads article XML from raw bytes. The input may be UTF-8, UTF-16
// with or without a BOM, or any declared encoding that the charset reader
// understands.
func Parse(data []byte) (*Article, error) {
	data, _, err := xmlenc.Normalize(data)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("jpts: XML parse failed: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "article" {
		return nil, fmt.Errorf("jpts: root element is not <article>")
	}

	front := root.SelectElement("front")
	if front == nil {
		return nil, ErrNoFront
	}

	article := &Article{
		Doc:        doc,
		Root:       root,
		Front:      front,
		Body:       root.SelectElement("body"),
		Back:       root.SelectElement("back"),
		DTDVersion: root.SelectAttrValue("dtd-version", ""),
	}
	article.DOI = findDOI(front)
	article.Publisher = detectPublisher(article.DOI)

	extract := metadataExtractor(article.Publisher, article.DTDVersion)
	meta, err := extract(front)
	if err != nil {
		return nil, err
	}
	article.Metadata = meta

	return article, nil
}

// ParseFile reads and parses an article XML file from disk.
func ParseFile(path string) (*Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jpts: failed to read file: %w", err)
	}
	return Parse(data)
}

// DOIFragment returns the registrant-local part of the DOI, used to name
// generated files ("10.1371/journal.pone.0035956" -> "journal.pone.0035956").
// Articles without a DOI fall back to FallbackID, which is never empty once
// the converter has run its identifier pass.
func (a *Article) DOIFragment() string {
	if i := strings.Index(a.DOI, "/"); i >= 0 {
		return a.DOI[i+1:]
	}
	if a.DOI == "" {
		return a.FallbackID
	}
	return a.DOI
}

// HasReferences reports whether the article back matter carries at least
// one <ref>, which controls both the bibliography document and its spine
// and navigation entries.
func (a *Article) HasReferences() bool {
	if a.Back == nil {
		return false
	}
	return len(a.Back.FindElements(".//ref")) > 0
}

// HasHTMLTables reports whether any table-wrap carries a native <table>,
// directly or inside <alternatives>.
func (a *Article) HasHTMLTables() bool {
	if a.Body == nil {
		return false
	}
	for _, wrap := range a.Body.FindElements(".//table-wrap") {
		if wrap.SelectElement("table") != nil {
			return true
		}
		if alt := wrap.SelectElement("alternatives"); alt != nil && alt.SelectElement("table") != nil {
			return true
		}
	}
	return false
}

func findDOI(front *etree.Element) string {
	for _, id := range front.FindElements(".//article-meta/article-id") {
		if id.SelectAttrValue("pub-id-type", "") == "doi" {
			return strings.TrimSpace(TextContent(id))
		}
	}
	return ""
}

func detectPublisher(doi string) Publisher {
	switch {
	case strings.HasPrefix(doi, "10.1371/"):
		return PublisherPLoS
	case strings.HasPrefix(doi, "10.3389/"):
		return PublisherFrontiers
	default:
		return PublisherUnknown
	}
}
