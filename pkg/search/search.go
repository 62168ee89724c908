// Package search queries a full-text index for documents and their OCR
// highlighting.
//
// Two backends implement Searcher:
//
//   - Client talks to a Solr core running the OCR highlighting plugin and
//     decodes its select response.
//   - Dir serves a directory of hOCR files, one volume per file, and builds
//     the same response shape from word-level matches. It is meant for local
//     work and tests without a Solr instance.
//
// Both return *ocrhl.Response values, so the rest of the system does not
// care where a result came from.
package search

import (
	"context"
	"errors"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

const (
	DefaultSnippets = 10
	MaxSnippets     = 50
	DefaultRows     = 1000

	// MaxContentSearchSnippets bounds AllSnippets queries. IIIF content
	// search reports every hit of a volume, not a preview.
	MaxContentSearchSnippets = 4096
)

var (
	// ErrBackend is returned when the index answers with a non-success status
	ErrBackend = errors.New("search backend error")
	// ErrNotFound is returned for unknown documents
	ErrNotFound = errors.New("document not found")
)

// Query describes one search request
type Query struct {
	Q        string
	Sources  []string // Restricts results when exactly one source is given
	Snippets int      // OCR snippets per document, clamped to 1..MaxSnippets
	Rows     int      // Maximum number of documents
	DocID    string   // Restricts the search to one document

	// AllSnippets asks for up to MaxContentSearchSnippets snippets and
	// overrides Snippets
	AllSnippets bool
}

// Searcher runs queries against an index
type Searcher interface {
	Search(ctx context.Context, q Query) (*ocrhl.Response, error)
}

// ClampSnippets bounds a snippet count to the accepted range.
// Zero or less selects DefaultSnippets.
func ClampSnippets(n int) int {
	switch {
	case n <= 0:
		return DefaultSnippets
	case n > MaxSnippets:
		return MaxSnippets
	}
	return n
}

// snippetLimit returns the number of snippets to request per document
func (q Query) snippetLimit() int {
	if q.AllSnippets {
		return MaxContentSearchSnippets
	}
	return ClampSnippets(q.Snippets)
}

func (q Query) rows() int {
	if q.Rows <= 0 {
		return DefaultRows
	}
	return q.Rows
}

// source returns the single selected source, if any
func (q Query) source() (string, bool) {
	if len(q.Sources) != 1 {
		return "", false
	}
	return q.Sources[0], true
}
