package overlay

import (
	"github.com/gardar/ocrlens/pkg/ocrhl"
	"github.com/gardar/ocrlens/pkg/viewport"
)

// Overlay keeps the highlight rectangles of one rendered region image in
// step with the image's observed size.
type Overlay struct {
	projector   *Projector
	region      ocrhl.Box
	boxes       []ocrhl.HighlightBox
	size        viewport.Size
	onChange    func([]Rect)
	unsubscribe func()
}

// Attach observes el, the rendered image of region, and re-projects boxes
// on every size change. onChange may be nil. Close must be called when the
// image is removed.
func (p *Projector) Attach(el viewport.Element, region ocrhl.Box, boxes []ocrhl.HighlightBox, onChange func([]Rect)) *Overlay {
	o := &Overlay{
		projector: p,
		region:    region,
		boxes:     boxes,
		onChange:  onChange,
	}
	o.unsubscribe = viewport.Subscribe(el, func(s viewport.Size) {
		o.size = s
		if o.onChange != nil {
			o.onChange(o.Rects())
		}
	})
	return o
}

// Size returns the latest observed size
func (o *Overlay) Size() viewport.Size { return o.size }

// Rects returns the rectangles for the latest observed width, or nil while
// the width is unknown or zero.
func (o *Overlay) Rects() []Rect {
	if o.size.Width <= 0 {
		return nil
	}
	return o.projector.ProjectAll(float64(o.size.Width), o.region, o.boxes)
}

// Close stops observing the image
func (o *Overlay) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}
