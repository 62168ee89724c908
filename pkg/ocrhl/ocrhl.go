// Package ocrhl holds the data model of an OCR-highlighted search response:
// documents with their display fields, per-field highlight fragments, and the
// OCR snippets with their pages, regions and highlight boxes.
//
// Coordinates are in document-pixel space, i.e. pixels of the source scan.
// Region boxes are absolute on their page; highlight boxes are relative to
// the region they belong to, as delivered by the Solr OCR highlighting plugin.
//
// Key Types:
//
// - Document: a matched document with ordered, possibly multi-valued fields
// - OcrSnippet: one passage match with its pages, regions and highlight boxes
// - Region / HighlightBox / Page: the geometry of a snippet
// - Response: one search response with highlighting for every document
//
// Main Functions:
//
// - RegionHighlights: highlight boxes that overlay one region
// - GroupByRegion: highlight boxes of every region in a single pass
// - Validate / Sanitize: detect and drop boxes with dangling indices
package ocrhl
