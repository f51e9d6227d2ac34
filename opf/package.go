// Package opf assembles the content.opf package document: Dublin Core
// metadata from the article front matter, a manifest of everything under
// the OPS directory, and the fixed reading-order spine.
package opf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oaepub/oaepub/jpts"
	"github.com/oaepub/oaepub/ops"
)

// mediaTypes maps file extensions found under OPS to manifest media
// types. Files with other extensions are left out of the manifest with a
// logged warning.
var mediaTypes = map[string]string{
	".xml":  "application/xhtml+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".css":  "text/css",
	".ncx":  "application/x-dtbncx+xml",
}

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	XMLNS    string      `xml:"xmlns,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XMLNSDC      string        `xml:"xmlns:dc,attr"`
	XMLNSOPF     string        `xml:"xmlns:opf,attr"`
	Identifier   opfIdentifier `xml:"dc:identifier"`
	Title        string        `xml:"dc:title"`
	Creators     []opfCreator  `xml:"dc:creator,omitempty"`
	Contributors []opfCreator  `xml:"dc:contributor,omitempty"`
	Language     string        `xml:"dc:language"`
	Date         *opfDate      `xml:"dc:date,omitempty"`
	Publisher    string        `xml:"dc:publisher,omitempty"`
	Description  string        `xml:"dc:description,omitempty"`
	Subjects     []string      `xml:"dc:subject,omitempty"`
	Rights       string        `xml:"dc:rights,omitempty"`
}

type opfIdentifier struct {
	ID     string `xml:"id,attr"`
	Scheme string `xml:"opf:scheme,attr,omitempty"`
	Text   string `xml:",chardata"`
}

type opfCreator struct {
	Role   string `xml:"opf:role,attr,omitempty"`
	FileAs string `xml:"opf:file-as,attr,omitempty"`
	Text   string `xml:",chardata"`
}

type opfDate struct {
	Event string `xml:"opf:event,attr,omitempty"`
	Text  string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfSpine struct {
	TOC      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// Assembler builds content.opf for one article's OPS directory.
type Assembler struct {
	article *jpts.Article
	addr    ops.Addresser

	// Log receives warnings about unrecognized files. Defaults to
	// slog.Default().
	Log *slog.Logger
}

func NewAssembler(article *jpts.Article) *Assembler {
	return &Assembler{
		article: article,
		addr:    ops.Addresser{DOIFragment: article.DOIFragment()},
	}
}

func (a *Assembler) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

// Generate walks opsDir and renders the package document. Spine presence
// follows the files actually written: a bibliography or table appendix
// that was never generated gets no itemref.
func (a *Assembler) Generate(opsDir string) ([]byte, error) {
	items, err := a.manifestItems(opsDir)
	if err != nil {
		return nil, err
	}

	pkg := opfPackage{
		Version:  "2.0",
		XMLNS:    "http://www.idpf.org/2007/opf",
		UniqueID: "PrimaryID",
		Metadata: a.metadata(),
		Manifest: opfManifest{Items: items},
		Spine:    a.spine(items),
	}

	data, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("opf: marshal package: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(data)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// WriteFile renders the package document to opsDir/content.opf, where the
// container points.
func (a *Assembler) WriteFile(opsDir string) error {
	data, err := a.Generate(opsDir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(opsDir, "content.opf"), data, 0o644); err != nil {
		return fmt.Errorf("opf: write content.opf: %w", err)
	}
	return nil
}

func (a *Assembler) metadata() opfMetadata {
	meta := a.article.Metadata
	m := opfMetadata{
		XMLNSDC:   "http://purl.org/dc/elements/1.1/",
		XMLNSOPF:  "http://www.idpf.org/2007/opf",
		Title:     meta.TitleText(),
		Language:  "en",
		Publisher: meta.PublisherName,
		Subjects:  meta.Keywords,
	}

	if a.article.DOI != "" {
		m.Identifier = opfIdentifier{ID: "PrimaryID", Scheme: "DOI", Text: a.article.DOI}
	} else {
		// Reuse the converter's generated identifier when one was
		// assigned, so the package id matches the file names.
		id := a.article.FallbackID
		if id == "" {
			id = uuid.NewString()
		}
		m.Identifier = opfIdentifier{ID: "PrimaryID", Scheme: "UUID", Text: "urn:uuid:" + id}
	}

	for _, author := range meta.Authors() {
		m.Creators = append(m.Creators, opfCreator{
			Role:   "aut",
			FileAs: author.FileAs(),
			Text:   author.DisplayName(),
		})
	}
	for _, editor := range meta.Editors() {
		m.Contributors = append(m.Contributors, opfCreator{
			Role:   "edt",
			FileAs: editor.FileAs(),
			Text:   editor.DisplayName(),
		})
	}

	if date, ok := meta.PubDates["epub"]; ok && !date.IsZero() {
		m.Date = &opfDate{Event: "publication", Text: date.ISO()}
	}

	for _, abstract := range meta.Abstracts {
		if abstract.Type == "" {
			m.Description = strings.TrimSpace(jpts.TextContent(abstract.Node))
			break
		}
	}

	if p := meta.Permissions; p != nil {
		rights := ""
		if p.Year != "" || p.Holder != "" {
			rights = strings.TrimSpace("© " + p.Year + " " + p.Holder)
			if p.LicenseText != "" {
				rights += ". "
			}
		}
		m.Rights = rights + p.LicenseText
	}

	return m
}

// manifestItems walks the OPS tree and emits one item per recognized
// file. toc.ncx always gets the id "ncx"; other ids derive from the
// relative path with dots and separators turned into dashes.
func (a *Assembler) manifestItems(opsDir string) ([]opfItem, error) {
	var items []opfItem
	err := filepath.WalkDir(opsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == "content.opf" {
			return nil
		}
		rel, err := filepath.Rel(opsDir, p)
		if err != nil {
			return err
		}
		href := filepath.ToSlash(rel)
		mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(p))]
		if !ok {
			a.logger().Warn("unrecognized file left out of manifest", "file", href)
			return nil
		}
		items = append(items, opfItem{ID: manifestID(href), Href: href, MediaType: mediaType})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("opf: walk OPS directory: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Href < items[j].Href })
	return items, nil
}

func manifestID(href string) string {
	if href == "toc.ncx" {
		return "ncx"
	}
	id := strings.ReplaceAll(href, "/", "-")
	return strings.ReplaceAll(id, ".", "-")
}

// spine emits the fixed reading order: synopsis, main text, bibliography,
// then the table appendix as non-linear auxiliary content. Only documents
// present in the manifest appear.
func (a *Assembler) spine(items []opfItem) opfSpine {
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[item.Href] = true
	}
	spine := opfSpine{TOC: "ncx"}
	for _, role := range []ops.DocumentRole{ops.RoleHeading, ops.RoleMain, ops.RoleBiblio, ops.RoleTables} {
		name := a.addr.Filename(role)
		if !present[name] {
			continue
		}
		ref := opfItemRef{IDRef: manifestID(name)}
		if role == ops.RoleTables {
			ref.Linear = "no"
		}
		spine.ItemRefs = append(spine.ItemRefs, ref)
	}
	return spine
}
