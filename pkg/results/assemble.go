package results

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gardar/ocrlens/pkg/highlight"
	"github.com/gardar/ocrlens/pkg/iiif"
	"github.com/gardar/ocrlens/pkg/ocrhl"
	"github.com/gardar/ocrlens/pkg/overlay"
)

// Page is the assembled result of one search
type Page struct {
	Query     string         `json:"query" yaml:"query"`
	NumFound  int            `json:"numFound" yaml:"numFound"`
	QTime     int            `json:"qTime" yaml:"qTime"`
	Documents []DocumentView `json:"documents" yaml:"documents"`
}

// DocumentView is one result document ready for rendering
type DocumentView struct {
	ID          string          `json:"id" yaml:"id"`
	Source      string          `json:"source,omitempty" yaml:"source,omitempty"`
	Heading     string          `json:"heading" yaml:"heading"`
	Fields      *ocrhl.Document `json:"fields" yaml:"fields"`
	NumTotal    int             `json:"numTotal" yaml:"numTotal"`
	NoMatches   bool            `json:"noMatches,omitempty" yaml:"noMatches,omitempty"`
	ManifestURI string          `json:"manifestUri,omitempty" yaml:"manifestUri,omitempty"`
	ViewerURL   string          `json:"viewerUrl,omitempty" yaml:"viewerUrl,omitempty"`
	Snippets    []SnippetView   `json:"snippets" yaml:"snippets"`
}

// SnippetView is one passage with its regions
type SnippetView struct {
	Text    string       `json:"text,omitempty" yaml:"text,omitempty"`
	Regions []RegionView `json:"regions" yaml:"regions"`
}

// RegionView is one region image with its highlights
type RegionView struct {
	Index        int                  `json:"index" yaml:"index"`
	PageID       string               `json:"pageId" yaml:"pageId"`
	Text         string               `json:"text" yaml:"text"`
	Box          ocrhl.Box            `json:"box" yaml:"box"`
	CropURL      string               `json:"cropUrl" yaml:"cropUrl"`
	DisplayWidth float64              `json:"displayWidth" yaml:"displayWidth"` // vw units
	ViewerURL    string               `json:"viewerUrl" yaml:"viewerUrl"`
	Highlights   []ocrhl.HighlightBox `json:"highlights" yaml:"highlights"`
	Rects        []overlay.Rect       `json:"rects,omitempty" yaml:"rects,omitempty"`
}

// Options controls one assembly run
type Options struct {
	Query       string
	ScreenWidth float64 // Rendered region width in pixels; 0 when unknown
	CropWidth   int     // Width hint for crop URLs; 0 requests full size
}

// Assembler builds view models from search responses
type Assembler struct {
	Merger    highlight.Merger
	Locator   *iiif.Locator
	Projector *overlay.Projector
	Manifests iiif.ManifestBuilder
	Logger    *slog.Logger
}

// NewAssembler creates an assembler with the default merger
func NewAssembler(locator *iiif.Locator, projector *overlay.Projector, manifests iiif.ManifestBuilder, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if projector == nil {
		projector = overlay.NewProjector(overlay.DefaultConfig())
	}
	return &Assembler{
		Merger:    highlight.Default,
		Locator:   locator,
		Projector: projector,
		Manifests: manifests,
		Logger:    logger,
	}
}

// Assemble builds the view of every document in resp. The response itself
// is not modified.
func (a *Assembler) Assemble(resp *ocrhl.Response, opts Options) *Page {
	page := &Page{Query: opts.Query, Documents: []DocumentView{}}
	if resp == nil {
		return page
	}
	page.NumFound = resp.NumFound
	page.QTime = resp.QTime
	for _, doc := range resp.Docs {
		if doc == nil {
			continue
		}
		page.Documents = append(page.Documents, a.Document(doc, resp, opts))
	}
	return page
}

// Document builds the view of a single document
func (a *Assembler) Document(doc *ocrhl.Document, resp *ocrhl.Response, opts Options) DocumentView {
	fields := a.Merger.MergeDocument(doc.Clone(), resp.HighlightsFor(doc.ID))
	ocr := resp.OcrFor(doc.ID)

	view := DocumentView{
		ID:        doc.ID,
		Source:    doc.Source,
		Heading:   heading(fields),
		Fields:    fields,
		NumTotal:  ocr.NumTotal,
		NoMatches: ocr.NumTotal == 0,
		Snippets:  []SnippetView{},
	}
	if a.Manifests.BaseURL != "" {
		view.ManifestURI = a.Manifests.ManifestURI(doc.ID)
	}

	title := a.Merger.Strip(fields.First("title"))
	imageDoc := imageDocID(doc)
	for i, raw := range ocr.Snippets {
		snip, issues := ocrhl.Sanitize(raw)
		for _, issue := range issues {
			a.Logger.Warn("invalid OCR highlighting", "doc", doc.ID, "snippet", i, "issue", issue.String())
		}
		view.Snippets = append(view.Snippets, a.snippet(imageDoc, title, view.ManifestURI, snip, opts))
	}

	if a.Locator != nil && view.ManifestURI != "" {
		if cv, ok := firstCanvas(view.Snippets); ok {
			view.ViewerURL = a.Locator.ViewerURL(view.ManifestURI, cv, opts.Query, "")
		}
	}
	return view
}

// imageDocID returns the id page images are stored under. Newspaper
// articles share the scans of their issue.
func imageDocID(doc *ocrhl.Document) string {
	if issue := doc.First("issue_id"); issue != "" {
		return issue
	}
	return doc.ID
}

func (a *Assembler) snippet(docID, title, manifestURI string, snip ocrhl.OcrSnippet, opts Options) SnippetView {
	grouped := ocrhl.GroupByRegion(snip)
	out := SnippetView{Text: snip.Text, Regions: make([]RegionView, 0, len(snip.Regions))}
	for idx, region := range snip.Regions {
		page, ok := ocrhl.PageOf(snip, region)
		if !ok {
			continue
		}
		rv := RegionView{
			Index:        idx,
			PageID:       page.ID,
			Text:         region.Text,
			Box:          region.Box,
			DisplayWidth: a.Projector.DisplayWidth(region.Box, page),
			Highlights:   grouped[idx],
		}
		if a.Locator != nil {
			rv.CropURL = a.Locator.CropURL(docID, page.ID, region.Box, opts.CropWidth)
			rv.ViewerURL = a.Locator.ViewerURL(manifestURI, page.ID, opts.Query, title)
		} else {
			rv.CropURL = iiif.CropID(docID, page.ID, region.Box, opts.CropWidth)
		}
		if opts.ScreenWidth > 0 {
			rv.Rects = a.Projector.ProjectAll(opts.ScreenWidth, region.Box, rv.Highlights)
		}
		out.Regions = append(out.Regions, rv)
	}
	return out
}

// firstCanvas returns the canvas of the first region of the first snippet
// that has one: its page index when the page id carries one, else the id
func firstCanvas(snippets []SnippetView) (string, bool) {
	var first *RegionView
	for i := range snippets {
		if len(snippets[i].Regions) > 0 {
			first = &snippets[i].Regions[0]
			break
		}
	}
	if first == nil {
		return "", false
	}
	if idx, ok := iiif.CanvasIndex(first.PageID); ok {
		return strconv.Itoa(idx), true
	}
	return first.PageID, true
}

// heading is "first author, title" or whichever of the two exists
func heading(doc *ocrhl.Document) string {
	parts := make([]string, 0, 2)
	if author := doc.First("author"); author != "" {
		parts = append(parts, author)
	}
	if title := doc.First("title"); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return doc.ID
	}
	return strings.Join(parts, ", ")
}
