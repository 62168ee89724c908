// Package hocr parses hOCR, the HTML-based format for OCR results, into the
// pages, lines and words needed to locate matches on a scan.
//
// This package provides:
//
// - A compact object model: document metadata, pages, lines and words
// - Parsing of hOCR HTML, including legacy single-byte encodings
// - Parsing of the hOCR title properties (bbox, ppageno, x_wconf, ...)
//
// Content areas and paragraphs are flattened: every line-level element
// (ocr_line, ocr_header, ocr_caption, ocr_textfloat) is collected directly
// under its page in document order.
//
// Key Types:
//
// - HOCR: the whole document with its Dublin Core metadata
// - Page: a page with class 'ocr_page' and its scan dimensions
// - Line: a line-level element with its words
// - Word: a word with class 'ocrx_word'
// - BoundingBox: a rectangle in scan pixels
//
// Main Functions:
//
// - Parse: parses hOCR HTML into the object model
// - ParseFile: reads and parses an hOCR file
// - ParseTitle / ParseBoundingBoxFromTitle: title attribute helpers
package hocr
