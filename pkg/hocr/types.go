package hocr

import "strings"

// HOCR represents a parsed hOCR document
type HOCR struct {
	Title      string            // Document title from <title>
	Language   string            // Document language
	Metadata   map[string]string // ocr-* meta tags
	DublinCore []MetaEntry       // DC.* meta tags in document order
	Pages      []Page            // Pages in the document
}

// MetaEntry is one Dublin Core metadata pair, without the "DC." prefix
type MetaEntry struct {
	Name  string
	Value string
}

// DC returns a Dublin Core value by name
func (h *HOCR) DC(name string) string {
	for _, m := range h.DublinCore {
		if m.Name == name {
			return m.Value
		}
	}
	return ""
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID         string      // Unique identifier
	PageNumber int         // Physical page number, 1-based
	ImageName  string      // Source image filename
	Lang       string      // Language code for this page
	BBox       BoundingBox // Page coordinates, i.e. the scan size
	Lines      []Line      // All line-level elements of the page
}

// Line is a line of text
// Corresponds to hOCR elements with class: 'ocr_line' and its siblings
type Line struct {
	ID    string      // Unique identifier
	BBox  BoundingBox // Line coordinates
	Words []Word      // Words in this line
}

// Text joins the words of the line with single spaces
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		if w.Text != "" {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string      // Unique identifier
	Text       string      // The actual text content
	BBox       BoundingBox // Word coordinates
	Confidence float64     // Recognition confidence (0-100)
}

// BoundingBox represents a rectangle in the scan
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 float64 // Left coordinate
	Y1 float64 // Top coordinate
	X2 float64 // Right coordinate
	Y2 float64 // Bottom coordinate
}

// NewBoundingBox creates a bounding box from coordinates
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Union returns the smallest box containing both boxes.
// A zero box is treated as empty.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if b == (BoundingBox{}) {
		return o
	}
	if o == (BoundingBox{}) {
		return b
	}
	return BoundingBox{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}
