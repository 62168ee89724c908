// Package results turns a search response into display-ready view models.
//
// For every returned document the Assembler merges field highlights into a
// copy of the document, counts OCR matches and lays out each snippet region
// with its crop URL, display width, viewer link and highlight boxes. When the
// rendered width of the region images is known it also projects the boxes to
// screen rectangles.
//
// Data-quality problems in snippets are logged and the offending regions or
// boxes are dropped; assembly itself never fails.
package results
