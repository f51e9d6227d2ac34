// Package ops builds the packaged content documents: the synopsis, the
// transformed article body, the bibliography, and the HTML-table appendix,
// all as XHTML 1.1 written under the package's OPS directory.
package ops

import (
	"fmt"
	"strings"
)

// DocumentRole names one of the four content documents. Cross-references
// resolve to a role first, then to a fragment inside that role's file.
type DocumentRole int

const (
	RoleHeading DocumentRole = iota
	RoleMain
	RoleBiblio
	RoleTables
)

func (r DocumentRole) String() string {
	switch r {
	case RoleHeading:
		return "heading"
	case RoleMain:
		return "main"
	case RoleBiblio:
		return "biblio"
	case RoleTables:
		return "tables"
	default:
		return fmt.Sprintf("DocumentRole(%d)", int(r))
	}
}

// BaseName is the filename prefix for the role's content document.
func (r DocumentRole) BaseName() string {
	switch r {
	case RoleHeading:
		return "synop"
	case RoleMain:
		return "main"
	case RoleBiblio:
		return "biblio"
	case RoleTables:
		return "tables"
	}
	return ""
}

// refTypeRoles maps JPTS xref ref-type values to the document that holds
// the target. There is no default: an unlisted ref-type is a lookup error
// and the caller decides what to do with the element.
var refTypeRoles = map[string]DocumentRole{
	"bibr":                   RoleBiblio,
	"fig":                    RoleMain,
	"table":                  RoleMain,
	"supplementary-material": RoleMain,
	"sec":                    RoleMain,
	"boxed-text":             RoleMain,
	"disp-formula":           RoleMain,
	"fn":                     RoleMain,
	"app":                    RoleMain,
	"other":                  RoleMain,
	"table-fn":               RoleTables,
	"aff":                    RoleHeading,
}

// RoleForRefType resolves an xref ref-type to its target document.
func RoleForRefType(refType string) (DocumentRole, error) {
	role, ok := refTypeRoles[refType]
	if !ok {
		return 0, fmt.Errorf("ops: no target document for ref-type %q", refType)
	}
	return role, nil
}

// Addresser derives the file names, fragment addresses, and image paths
// for one article, all from the DOI fragment.
type Addresser struct {
	DOIFragment string
}

// Filename returns the content document name for a role,
// e.g. "main.journal.pone.0035956.xml".
func (a Addresser) Filename(role DocumentRole) string {
	return role.BaseName() + "." + a.DOIFragment + ".xml"
}

// Fragment returns a same-package href targeting an id inside a role's
// document, e.g. "main.journal.pone.0035956.xml#s2".
func (a Addresser) Fragment(role DocumentRole, id string) string {
	return a.Filename(role) + "#" + id
}

// ImageDir is the per-article image directory name under OPS.
func (a Addresser) ImageDir() string {
	return "images-" + a.DOIFragment
}

// ImagePath synthesizes the document-relative image path for a graphic's
// xlink:href. The segment after the last dot names the object
// ("journal.pone.0035956.g001" -> "g001"), and acquisition normalizes all
// raster formats to PNG.
func (a Addresser) ImagePath(href string) string {
	name := href
	if i := strings.LastIndex(href, "."); i >= 0 {
		name = href[i+1:]
	}
	return a.ImageDir() + "/" + name + ".png"
}
