package ocrhl

// Box is a rectangle given by its upper-left and lower-right corners
type Box struct {
	Ulx float64 `json:"ulx"` // Left coordinate
	Uly float64 `json:"uly"` // Top coordinate
	Lrx float64 `json:"lrx"` // Right coordinate
	Lry float64 `json:"lry"` // Bottom coordinate
}

// NewBox creates a box from its corner coordinates
func NewBox(ulx, uly, lrx, lry float64) Box {
	return Box{Ulx: ulx, Uly: uly, Lrx: lrx, Lry: lry}
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 { return b.Lrx - b.Ulx }

// Height returns the vertical extent of the box
func (b Box) Height() float64 { return b.Lry - b.Uly }

// Empty reports whether the box has no positive area
func (b Box) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Page is a scanned page referenced by a snippet
type Page struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region is a recognized word or line and its box on a page
type Region struct {
	Box
	Text    string `json:"text"`    // Recognized text, may contain <em> markers
	PageIdx int    `json:"pageIdx"` // Index into the snippet's Pages
}

// HighlightBox is a matched span inside a region.
// Its coordinates are relative to the parent region.
type HighlightBox struct {
	Box
	Text            string `json:"text"`            // Matched text, used as tooltip
	ParentRegionIdx int    `json:"parentRegionIdx"` // Index into the snippet's Regions
}

// OcrSnippet is one passage match inside a document's OCR text
type OcrSnippet struct {
	Text       string           `json:"text,omitempty"`
	Pages      []Page           `json:"pages"`
	Regions    []Region         `json:"regions"`
	Highlights [][]HighlightBox `json:"highlights"`
}

// OcrHighlighting holds all snippets of one document
type OcrHighlighting struct {
	NumTotal int          `json:"numTotal"`
	Snippets []OcrSnippet `json:"snippets"`
}

// FieldHighlights maps a field name to its marked strings, in backend order
type FieldHighlights map[string][]string

// Response is one search response
type Response struct {
	NumFound        int                         `json:"numFound"`
	QTime           int                         `json:"qTime"`
	Docs            []*Document                 `json:"docs"`
	Highlighting    map[string]FieldHighlights  `json:"highlighting,omitempty"`
	OcrHighlighting map[string]*OcrHighlighting `json:"ocrHighlighting,omitempty"`
}

// HighlightsFor returns the field highlights of a document, or nil
func (r *Response) HighlightsFor(docID string) FieldHighlights {
	if r == nil || r.Highlighting == nil {
		return nil
	}
	return r.Highlighting[docID]
}

// OcrFor returns the OCR highlighting of a document.
// Missing data yields an empty OcrHighlighting rather than nil.
func (r *Response) OcrFor(docID string) *OcrHighlighting {
	if r != nil && r.OcrHighlighting != nil {
		if hl := r.OcrHighlighting[docID]; hl != nil {
			return hl
		}
	}
	return &OcrHighlighting{}
}
