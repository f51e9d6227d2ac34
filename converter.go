// Package oaepub converts open-access journal articles, XML tagged per the
// NLM Journal Publishing DTD, into EPUB files.
package oaepub

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/oaepub/oaepub/epub"
	"github.com/oaepub/oaepub/images"
	"github.com/oaepub/oaepub/jpts"
	"github.com/oaepub/oaepub/ncx"
	"github.com/oaepub/oaepub/opf"
	"github.com/oaepub/oaepub/ops"
)

// Options contains conversion options.
type Options struct {
	// OutputDir is where the EPUB is written. Empty means the directory
	// of the input file.
	OutputDir string

	// Images controls where article images are looked for.
	Images images.Options

	// KeepUnpacked leaves the expanded EPUB directory next to the
	// packed file instead of removing it.
	KeepUnpacked bool

	Log *slog.Logger
}

// DefaultOptions returns default conversion options: images are taken from
// an images-<name> or images directory beside the input, with cache and
// publisher fetch enabled.
func DefaultOptions() Options {
	return Options{
		Images: images.Options{
			InputRelative: []string{"images-*", "images"},
			UseCache:      true,
			StoreCache:    true,
			Fetch:         true,
		},
	}
}

// Converter runs the article to EPUB pipeline.
type Converter struct {
	options Options
	log     *slog.Logger
}

// NewConverter creates a converter with default options.
func NewConverter() *Converter {
	c := &Converter{}
	c.SetOptions(DefaultOptions())
	return c
}

// SetOptions sets conversion options.
func (c *Converter) SetOptions(options Options) {
	c.options = options
	c.log = options.Log
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.options.Images.Log == nil {
		c.options.Images.Log = c.log
	}
}

// Convert converts the article XML at inputPath and returns the path of
// the written EPUB file.
func (c *Converter) Convert(inputPath string) (string, error) {
	article, err := jpts.ParseFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", inputPath, err)
	}

	// A DOI-less article still converts; it just needs a generated
	// identifier before any file name derives from the fragment.
	if article.DOIFragment() == "" {
		article.FallbackID = uuid.NewString()
		c.log.Warn("article carries no DOI, using a generated identifier",
			"input", inputPath, "id", article.FallbackID)
	}

	outputDir := c.options.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	artDir := filepath.Join(outputDir, article.DOIFragment())
	if artDir == outputDir {
		return "", fmt.Errorf("convert %s: article directory resolves to the output directory", inputPath)
	}

	c.log.Info("converting article",
		"input", inputPath,
		"doi", article.DOI,
		"publisher", article.Publisher.String())

	opsDir, err := epub.WriteSkeleton(artDir)
	if err != nil {
		return "", err
	}

	transformer := ops.NewTransformer(article, c.log)
	if err := transformer.WriteAll(opsDir); err != nil {
		return "", err
	}

	var builder ncx.Builder
	toc := builder.Build(article)
	if err := ncx.WriteFile(toc, c.docAuthor(article), opsDir); err != nil {
		return "", err
	}

	// Missing images degrade the EPUB but do not invalidate it.
	if err := images.Acquire(article, inputPath, opsDir, c.options.Images); err != nil {
		c.log.Warn("image acquisition failed", "doi", article.DOI, "error", err)
	}

	// The manifest is assembled last so it sees every file the earlier
	// stages placed under OPS.
	assembler := opf.NewAssembler(article)
	assembler.Log = c.log
	if err := assembler.WriteFile(opsDir); err != nil {
		return "", err
	}

	epubPath := artDir + ".epub"
	if err := epub.PackFile(artDir, epubPath); err != nil {
		return "", err
	}

	if !c.options.KeepUnpacked {
		if err := os.RemoveAll(artDir); err != nil {
			c.log.Warn("could not remove expanded directory", "dir", artDir, "error", err)
		}
	}

	c.log.Info("wrote epub", "output", epubPath)
	return epubPath, nil
}

// docAuthor picks the NCX docAuthor: the first author in file-as form.
func (c *Converter) docAuthor(article *jpts.Article) string {
	authors := article.Metadata.Authors()
	if len(authors) == 0 {
		return ""
	}
	return authors[0].FileAs()
}

// ConvertFile converts an article XML file to EPUB with default options
// and returns the path of the written file.
func ConvertFile(inputPath string) (string, error) {
	return NewConverter().Convert(inputPath)
}

// ExtractMetadata parses an article file and returns its front-matter
// metadata without converting it.
func ExtractMetadata(path string) (*jpts.Metadata, error) {
	article, err := jpts.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return article.Metadata, nil
}

// ValidateArticle checks that a file parses as a journal article and that
// its required front matter is present.
func ValidateArticle(path string) error {
	article, err := jpts.ParseFile(path)
	if err != nil {
		return err
	}
	if article.DOI == "" {
		return fmt.Errorf("validate %s: article carries no DOI", path)
	}
	if strings.TrimSpace(article.Metadata.TitleText()) == "" {
		return fmt.Errorf("validate %s: article title is empty", path)
	}
	return nil
}
