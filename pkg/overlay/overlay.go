// Package overlay projects OCR highlight boxes from document-pixel space onto
// a region image rendered at an arbitrary on-screen width.
//
// The scale factor is the rendered width of the region crop divided by the
// crop's width in document pixels. Highlight boxes are region-relative, so
// every coordinate is multiplied by that factor and nothing else.
//
// An overlay is only produced while the scale factor is known and finite;
// before the first measurement, or for malformed regions, nothing renders.
package overlay
