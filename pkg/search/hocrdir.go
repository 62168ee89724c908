package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/gardar/ocrlens/pkg/hocr"
	"github.com/gardar/ocrlens/pkg/ocrhl"
)

// Extension is the file extension of volumes in a Dir
const Extension = ".hocr"

// Dir is a Searcher over a directory of hOCR files. Every file is one
// document whose id is the file name without extension. Terms match whole
// words case-insensitively; every line holding a match becomes a snippet.
type Dir struct {
	Root   string
	Source string // Source tag of every document
	Logger *slog.Logger
}

// NewDir creates a backend for the hOCR files in root
func NewDir(root, source string, logger *slog.Logger) *Dir {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{Root: root, Source: source, Logger: logger}
}

// IDs lists the document ids in the directory, sorted
func (d *Dir) IDs() ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.Strings(ids)
	return ids, nil
}

// Load parses the hOCR file of a document
func (d *Dir) Load(id string) (*hocr.HOCR, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	doc, err := hocr.ParseFile(filepath.Join(d.Root, id+Extension))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, err
}

// Search scans every document of the directory for the query terms
func (d *Dir) Search(ctx context.Context, q Query) (*ocrhl.Response, error) {
	start := time.Now()
	terms := queryTerms(q.Q)
	resp := &ocrhl.Response{
		Docs:            []*ocrhl.Document{},
		Highlighting:    map[string]ocrhl.FieldHighlights{},
		OcrHighlighting: map[string]*ocrhl.OcrHighlighting{},
	}
	if len(terms) == 0 {
		return resp, nil
	}
	if src, ok := q.source(); ok && src != d.Source {
		return resp, nil
	}

	ids := []string{q.DocID}
	if q.DocID == "" {
		var err error
		if ids, err = d.IDs(); err != nil {
			return nil, err
		}
	}

	limit := q.snippetLimit()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vol, err := d.Load(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) && q.DocID != "" {
				return resp, nil
			}
			// One broken volume should not fail the whole search
			d.Logger.Warn("skipping unreadable volume", "id", id, "error", err)
			continue
		}

		doc, fields := d.document(id, vol, terms)
		ocr := matchVolume(vol, terms, limit)
		if fields == nil && ocr.NumTotal == 0 {
			continue
		}

		resp.NumFound++
		if len(resp.Docs) >= q.rows() {
			continue
		}
		resp.Docs = append(resp.Docs, doc)
		if fields != nil {
			resp.Highlighting[id] = fields
		}
		if ocr.NumTotal > 0 {
			resp.OcrHighlighting[id] = ocr
		}
	}
	resp.QTime = int(time.Since(start).Milliseconds())
	d.Logger.Debug("directory search completed", "q", q.Q, "numFound", resp.NumFound)
	return resp, nil
}

// document builds the result document of a volume and highlights of its
// metadata fields
func (d *Dir) document(id string, vol *hocr.HOCR, terms map[string]bool) (*ocrhl.Document, ocrhl.FieldHighlights) {
	doc := ocrhl.NewDocument(id, d.Source)
	title := vol.DC("title")
	if title == "" {
		title = vol.Title
	}
	if title != "" {
		doc.SetField("title", ocrhl.Single(title))
	}
	if creator := vol.DC("creator"); creator != "" {
		doc.SetField("author", ocrhl.Single(creator))
	}
	if publisher := vol.DC("publisher"); publisher != "" {
		doc.SetField("publisher", ocrhl.Single(publisher))
	}
	if date := vol.DC("date"); date != "" {
		doc.SetField("date", ocrhl.Single(date))
	}
	if vol.Language != "" {
		doc.SetField("language", ocrhl.Single(vol.Language))
	}

	var fields ocrhl.FieldHighlights
	for _, name := range []string{"title", "author", "publisher"} {
		value := doc.First(name)
		if marked, n := markTerms(value, terms); n > 0 {
			if fields == nil {
				fields = ocrhl.FieldHighlights{}
			}
			fields[name] = []string{marked}
		}
	}
	return doc, fields
}

// matchVolume collects line snippets holding query terms. NumTotal counts
// every matched word, while at most limit snippets are kept.
func matchVolume(vol *hocr.HOCR, terms map[string]bool, limit int) *ocrhl.OcrHighlighting {
	out := &ocrhl.OcrHighlighting{Snippets: []ocrhl.OcrSnippet{}}
	for _, page := range vol.Pages {
		for _, line := range page.Lines {
			snip, n := matchLine(page, line, terms)
			if n == 0 {
				continue
			}
			out.NumTotal += n
			if len(out.Snippets) < limit {
				out.Snippets = append(out.Snippets, snip)
			}
		}
	}
	return out
}

// matchLine turns a line into a snippet with one region. Highlight boxes are
// relative to the line box; every matched word is its own group.
func matchLine(page hocr.Page, line hocr.Line, terms map[string]bool) (ocrhl.OcrSnippet, int) {
	region := ocrhl.Region{
		Box: ocrhl.NewBox(line.BBox.X1, line.BBox.Y1, line.BBox.X2, line.BBox.Y2),
	}
	var (
		words      []string
		highlights [][]ocrhl.HighlightBox
	)
	for _, w := range line.Words {
		if w.Text == "" {
			continue
		}
		if !terms[normalize(w.Text)] {
			words = append(words, w.Text)
			continue
		}
		words = append(words, "<em>"+w.Text+"</em>")
		highlights = append(highlights, []ocrhl.HighlightBox{{
			Box: ocrhl.NewBox(
				w.BBox.X1-line.BBox.X1, w.BBox.Y1-line.BBox.Y1,
				w.BBox.X2-line.BBox.X1, w.BBox.Y2-line.BBox.Y1,
			),
			Text: w.Text,
		}})
	}
	if len(highlights) == 0 {
		return ocrhl.OcrSnippet{}, 0
	}

	region.Text = strings.Join(words, " ")
	return ocrhl.OcrSnippet{
		Text:       region.Text,
		Pages:      []ocrhl.Page{{ID: page.ID, Width: page.BBox.Width(), Height: page.BBox.Height()}},
		Regions:    []ocrhl.Region{region},
		Highlights: highlights,
	}, len(highlights)
}

// markTerms wraps whole-word term matches of text in <em> markers
func markTerms(text string, terms map[string]bool) (string, int) {
	if text == "" {
		return "", 0
	}
	words := strings.Fields(text)
	n := 0
	for i, w := range words {
		if terms[normalize(w)] {
			words[i] = "<em>" + w + "</em>"
			n++
		}
	}
	if n == 0 {
		return text, 0
	}
	return strings.Join(words, " "), n
}

// queryTerms splits a query into lowercase word terms, ignoring operators
func queryTerms(q string) map[string]bool {
	terms := map[string]bool{}
	for _, f := range strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		switch f {
		case "AND", "OR", "NOT":
			continue
		}
		terms[strings.ToLower(f)] = true
	}
	return terms
}

// normalize lowercases a word and trims surrounding punctuation
func normalize(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}
