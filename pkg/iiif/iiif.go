// Package iiif builds the IIIF-facing identifiers and documents of a search
// result: Image API crop identifiers for region images, Presentation API 2
// manifests for volumes, and Content Search API 0 annotation lists.
//
// Crop identifiers are a wire-format contract with the image server:
//
//	{documentId}%2F{pageId}.jpg/{x},{y},{w},{h}/{size},/0/default.jpg
//
// where the region values are truncated toward zero and size is either the
// requested width or the literal "max".
//
// Main Functions:
//
// - CropID / Locator.CropURL: region crop identifiers and URLs
// - Locator.ViewerURL: deep link into the page viewer
// - ManifestBuilder.Build: manifest from a parsed hOCR volume
// - SearchBuilder.Build: annotation list from OCR highlighting
package iiif
