// Package images places an article's image files into the package's OPS
// directory. Sources are tried in a fixed order: an explicit directory,
// directories relative to the input file, the local cache, and finally the
// publisher's website.
package images

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/oaepub/oaepub/jpts"
)

// plosJournalURLs maps PLoS subjournal short names, the second dot-segment
// of the article DOI, to their article servers.
var plosJournalURLs = map[string]string{
	"pgen": "http://www.plosgenetics.org/article/",
	"pcbi": "http://www.ploscompbiol.org/article/",
	"ppat": "http://www.plospathogens.org/article/",
	"pntd": "http://www.plosntds.org/article/",
	"pmed": "http://www.plosmedicine.org/article/",
	"pbio": "http://www.plosbiology.org/article/",
	"pone": "http://www.plosone.org/article/",
	"pctr": "http://clinicaltrials.ploshubs.org/article/",
}

// Options controls where Acquire looks for images.
type Options struct {
	// SourceDir is an explicit image directory. When set it is the only
	// source tried. A "*" expands to the input file's root name.
	SourceDir string

	// InputRelative lists directories to probe relative to the input
	// file's directory, with the same "*" expansion.
	InputRelative []string

	// CacheDir is the root of the local image cache, laid out as
	// <CacheDir>/<journal-doi>/<article-doi>.
	CacheDir   string
	UseCache   bool
	StoreCache bool

	// Fetch permits downloading from the publisher when local sources
	// fail.
	Fetch bool

	Client *http.Client
	Log    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// Acquire gathers the article's images into opsDir/images-<article-doi>.
// inputPath is the article XML path, used for input-relative lookup and
// wildcard expansion. Failure to find images is an error the caller may
// treat as non-fatal: the content documents still reference the paths.
func Acquire(article *jpts.Article, inputPath, opsDir string, opts Options) error {
	journalDOI, articleDOI, ok := strings.Cut(article.DOI, "/")
	if !ok {
		return fmt.Errorf("images: article DOI %q has no registrant part", article.DOI)
	}
	log := opts.logger()

	destDir := filepath.Join(opsDir, "images-"+articleDOI)
	cacheDir := filepath.Join(opts.CacheDir, journalDOI, articleDOI)
	rootName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if opts.SourceDir != "" {
		src := strings.ReplaceAll(opts.SourceDir, "*", rootName)
		log.Info("using explicit image directory", "dir", src)
		if err := copyTree(src, destDir); err != nil {
			return fmt.Errorf("images: explicit directory: %w", err)
		}
		storeCache(destDir, cacheDir, opts, log)
		return nil
	}

	for _, rel := range opts.InputRelative {
		rel = strings.ReplaceAll(rel, "*", rootName)
		src := filepath.Join(filepath.Dir(inputPath), rel)
		if info, err := os.Stat(src); err != nil || !info.IsDir() {
			continue
		}
		log.Info("using input-relative image directory", "dir", src)
		if err := copyTree(src, destDir); err != nil {
			return fmt.Errorf("images: input-relative directory: %w", err)
		}
		storeCache(destDir, cacheDir, opts, log)
		return nil
	}

	if opts.UseCache {
		if info, err := os.Stat(cacheDir); err == nil && info.IsDir() {
			log.Info("using cached images", "dir", cacheDir)
			if err := copyTree(cacheDir, destDir); err != nil {
				return fmt.Errorf("images: cache: %w", err)
			}
			return nil
		}
	}

	if opts.Fetch {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return fmt.Errorf("images: create image directory: %w", err)
		}
		var err error
		switch article.Publisher {
		case jpts.PublisherPLoS:
			err = fetchPLoS(article, articleDOI, destDir, opts)
		case jpts.PublisherFrontiers:
			log.Warn("image fetching for Frontiers may miss files")
			err = fetchFrontiers(article, articleDOI, destDir, opts)
		default:
			err = fmt.Errorf("images: fetching not supported for publisher %s", article.Publisher)
		}
		if err != nil {
			return err
		}
		storeCache(destDir, cacheDir, opts, log)
		return nil
	}

	return fmt.Errorf("images: no image source found for %s", article.DOI)
}

func storeCache(destDir, cacheDir string, opts Options, log *slog.Logger) {
	if !opts.UseCache || !opts.StoreCache {
		return
	}
	if _, err := os.Stat(cacheDir); err == nil {
		log.Debug("cached images already present", "dir", cacheDir)
		return
	}
	if err := copyTree(destDir, cacheDir); err != nil {
		log.Warn("could not store images in cache", "error", err)
		return
	}
	log.Info("stored images in cache", "dir", cacheDir)
}

// fetchPLoS downloads every graphic and inline-graphic referenced by the
// article from the subjournal's server. Equation objects need the
// fetchObject endpoint; everything else has a larger-image page.
func fetchPLoS(article *jpts.Article, articleDOI, destDir string, opts Options) error {
	base, err := plosBaseURL(articleDOI)
	if err != nil {
		return err
	}
	log := opts.logger()
	client := opts.client()

	graphics := article.Root.FindElements(".//graphic")
	graphics = append(graphics, article.Root.FindElements(".//inline-graphic")...)

	log.Info("downloading images", "count", len(graphics))
	for _, graphic := range graphics {
		href := graphic.SelectAttrValue("xlink:href", "")
		if href == "" {
			continue
		}
		objName := href
		if i := strings.LastIndex(href, "."); i >= 0 {
			objName = href[i+1:]
		}
		var url string
		if strings.HasPrefix(objName, "e") {
			url = base + "fetchObject.action?uri=" + href + "&representation=PNG"
		} else {
			url = base + href + "/largerimage"
		}
		if err := download(client, url, filepath.Join(destDir, objName+".png")); err != nil {
			return fmt.Errorf("images: download %s: %w", objName, err)
		}
		log.Debug("downloaded image", "name", objName+".png")
	}
	return nil
}

// fetchFrontiers pulls images from the article's fulltext page links.
// Frontiers exposes no stable object URLs, so only graphics carrying
// absolute hrefs can be fetched.
func fetchFrontiers(article *jpts.Article, articleDOI, destDir string, opts Options) error {
	log := opts.logger()
	client := opts.client()
	for _, graphic := range article.Root.FindElements(".//graphic") {
		href := graphic.SelectAttrValue("xlink:href", "")
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			log.Warn("no fetchable URL for graphic", "href", href)
			continue
		}
		name := path.Base(href)
		if err := download(client, href, filepath.Join(destDir, name)); err != nil {
			return fmt.Errorf("images: download %s: %w", name, err)
		}
	}
	return nil
}

func download(client *http.Client, url, dest string) error {
	resp, err := client.Get(url)
	if err == nil && resp.StatusCode == http.StatusServiceUnavailable {
		// Server overloaded; one retry after a pause.
		resp.Body.Close()
		time.Sleep(time.Second)
		resp, err = client.Get(url)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP status %s", resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func plosBaseURL(articleDOI string) (string, error) {
	parts := strings.Split(articleDOI, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("images: cannot identify subjournal in %q", articleDOI)
	}
	base, ok := plosJournalURLs[parts[1]]
	if !ok {
		return "", fmt.Errorf("images: unknown PLoS subjournal %q", parts[1])
	}
	return base, nil
}

// SingleRepresentationURL builds the publisher URL for a supplementary
// object, used to link supplementary material out of the package rather
// than bundling it.
func SingleRepresentationURL(articleDOI, href string) string {
	base, err := plosBaseURL(articleDOI)
	if err != nil {
		return href
	}
	return base + "fetchSingleRepresentation.action?uri=" + href
}

// copyTree recursively copies the directory at src to dst. dst must not
// already exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
