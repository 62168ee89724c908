package overlay

import (
	"math"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

// DefaultSnippetScaleFactor sizes a region image relative to the viewport
const DefaultSnippetScaleFactor = 50

// Config holds projector settings
type Config struct {
	// SnippetScaleFactor normalizes letter size across snippets; a region
	// spanning the full page width is displayed SnippetScaleFactor vw wide.
	SnippetScaleFactor float64
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{SnippetScaleFactor: DefaultSnippetScaleFactor}
}

// Rect is an overlay rectangle in screen pixels
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Title  string  `json:"title,omitempty"` // Tooltip, the matched text
}

// Projector maps region-relative boxes to screen rectangles
type Projector struct {
	cfg Config
}

// NewProjector creates a projector
func NewProjector(cfg Config) *Projector {
	return &Projector{cfg: cfg}
}

// ScaleFactor returns screenWidth divided by the region's document width.
// It is not ok when either width is non-positive or the result is not finite.
func ScaleFactor(screenWidth float64, region ocrhl.Box) (float64, bool) {
	docWidth := region.Width()
	if screenWidth <= 0 || docWidth <= 0 {
		return 0, false
	}
	s := screenWidth / docWidth
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return 0, false
	}
	return s, true
}

// Project maps one highlight box onto a region image rendered screenWidth
// pixels wide. Boxes without area and unknown scales are not projected.
func (p *Projector) Project(screenWidth float64, region, box ocrhl.Box) (Rect, bool) {
	s, ok := ScaleFactor(screenWidth, region)
	if !ok {
		return Rect{}, false
	}
	return scaleBox(s, box)
}

// ProjectAll maps every highlight box of a region, one rectangle per box.
// Malformed boxes are skipped; the rest still render.
func (p *Projector) ProjectAll(screenWidth float64, region ocrhl.Box, boxes []ocrhl.HighlightBox) []Rect {
	s, ok := ScaleFactor(screenWidth, region)
	if !ok {
		return nil
	}
	rects := make([]Rect, 0, len(boxes))
	for _, hl := range boxes {
		r, ok := scaleBox(s, hl.Box)
		if !ok {
			continue
		}
		r.Title = hl.Text
		rects = append(rects, r)
	}
	return rects
}

// DisplayWidth returns the CSS width of a region image in vw units
func (p *Projector) DisplayWidth(region ocrhl.Box, page ocrhl.Page) float64 {
	if page.Width <= 0 || region.Width() <= 0 {
		return 0
	}
	return p.cfg.SnippetScaleFactor * region.Width() / page.Width
}

func scaleBox(s float64, box ocrhl.Box) (Rect, bool) {
	if box.Empty() {
		return Rect{}, false
	}
	return Rect{
		Left:   s * box.Ulx,
		Top:    s * box.Uly,
		Width:  s * box.Width(),
		Height: s * box.Height(),
	}, true
}
