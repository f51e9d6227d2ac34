// Package epub handles the EPUB container: the on-disk skeleton an
// article is assembled into, and the final zip packing.
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const mimetype = "application/epub+zip"

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// WriteSkeleton lays out the article's working directory: the mimetype
// file, META-INF/container.xml, and an empty OPS directory for the
// content documents. It returns the OPS directory path.
func WriteSkeleton(artDir string) (string, error) {
	if err := os.MkdirAll(artDir, 0o755); err != nil {
		return "", fmt.Errorf("epub: create article directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(artDir, "mimetype"), []byte(mimetype), 0o644); err != nil {
		return "", fmt.Errorf("epub: write mimetype: %w", err)
	}
	metaInf := filepath.Join(artDir, "META-INF")
	if err := os.MkdirAll(metaInf, 0o755); err != nil {
		return "", fmt.Errorf("epub: create META-INF: %w", err)
	}
	if err := os.WriteFile(filepath.Join(metaInf, "container.xml"), []byte(containerXML), 0o644); err != nil {
		return "", fmt.Errorf("epub: write container.xml: %w", err)
	}
	opsDir := filepath.Join(artDir, "OPS")
	if err := os.MkdirAll(opsDir, 0o755); err != nil {
		return "", fmt.Errorf("epub: create OPS: %w", err)
	}
	return opsDir, nil
}

// Pack zips the assembled article directory into an EPUB stream. The
// mimetype entry goes first and uncompressed, as the container spec
// requires; everything else is deflated.
func Pack(artDir string, output io.Writer) error {
	zw := zip.NewWriter(output)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("epub: create mimetype entry: %w", err)
	}
	if _, err := mt.Write([]byte(mimetype)); err != nil {
		return fmt.Errorf("epub: write mimetype entry: %w", err)
	}

	err = filepath.WalkDir(artDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(artDir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if name == "mimetype" {
			return nil
		}
		entry, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("epub: pack %s: %w", filepath.Base(artDir), err)
	}
	return zw.Close()
}

// PackFile zips the article directory to the named .epub file.
func PackFile(artDir, epubPath string) error {
	f, err := os.Create(epubPath)
	if err != nil {
		return fmt.Errorf("epub: create %s: %w", filepath.Base(epubPath), err)
	}
	defer f.Close()
	return Pack(artDir, f)
}
