// Package report renders assembled search results as a PDF document.
//
// Every result document gets a heading and its match count, followed by the
// cropped region images of its snippets. Highlight boxes are painted as
// translucent rectangles on their own optional content layer, so they can be
// toggled in PDF readers that support layers. The recognized text of each
// region is printed below its image.
//
// Images are loaded through an ImageFetcher; HTTPFetcher retrieves crops from
// an IIIF Image API server. A region whose image cannot be fetched is noted
// in the document and logged, and the report still completes.
//
// Main Functions:
//
// - NewWriter: creates a writer from a Config and a fetcher
// - Writer.Write: renders a results page into PDF bytes
package report
