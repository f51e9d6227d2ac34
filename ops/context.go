package ops

import (
	"log/slog"

	"github.com/beevik/etree"
)

// Context carries the per-article state shared by the transformation
// rules. One Context serves one conversion; rules mutate PendingTables and
// nothing else in it.
type Context struct {
	Addr Addresser

	// IDs is the synthesized-id assignment for the clone being
	// transformed, applied before any rule runs.
	IDs map[*etree.Element]string

	// PendingTables accumulates native <table> elements lifted out of
	// table-wraps, in document order, for the table appendix.
	PendingTables []*etree.Element

	Log *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
