package iiif

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

// DefaultViewerPath is where the page viewer is mounted
const DefaultViewerPath = "/viewer/"

// ImageID returns the image service identifier of a page scan
func ImageID(documentID, pageID string) string {
	return documentID + "%2F" + pageID + ".jpg"
}

// CropID returns the crop identifier of a box on a page. A widthHint of
// zero or less requests the full resolution ("max").
func CropID(documentID, pageID string, box ocrhl.Box, widthHint int) string {
	x := int(box.Ulx)
	y := int(box.Uly)
	w := int(box.Lrx - box.Ulx)
	h := int(box.Lry - box.Uly)

	size := "max"
	if widthHint > 0 {
		size = strconv.Itoa(widthHint)
	}
	return fmt.Sprintf("%s/%d,%d,%d,%d/%s,/0/default.jpg", ImageID(documentID, pageID), x, y, w, h, size)
}

// Locator turns crop identifiers into URLs of a concrete image server
type Locator struct {
	ImageAPIBase string
	ViewerPath   string
}

// NewLocator creates a locator for an image server base URL
func NewLocator(imageAPIBase string) *Locator {
	return &Locator{
		ImageAPIBase: strings.TrimRight(imageAPIBase, "/"),
		ViewerPath:   DefaultViewerPath,
	}
}

// CropURL returns the full URL of a region crop
func (l *Locator) CropURL(documentID, pageID string, box ocrhl.Box, widthHint int) string {
	return l.ImageAPIBase + "/" + CropID(documentID, pageID, box, widthHint)
}

// ImageInfoURL returns the info.json URL of a page scan
func (l *Locator) ImageInfoURL(documentID, pageID string) string {
	return l.ImageAPIBase + "/" + ImageID(documentID, pageID) + "/info.json"
}

// ViewerURL links to canvas in the viewer, with the query pre-filled.
// An empty title is left out.
func (l *Locator) ViewerURL(manifestURI, canvas, query, title string) string {
	path := l.ViewerPath
	if path == "" {
		path = DefaultViewerPath
	}
	var b strings.Builder
	b.WriteString(path)
	b.WriteString("?manifest=")
	b.WriteString(url.QueryEscape(manifestURI))
	b.WriteString("&cv=")
	b.WriteString(url.QueryEscape(canvas))
	b.WriteString("&q=")
	b.WriteString(url.QueryEscape(query))
	if title != "" {
		b.WriteString("&title=")
		b.WriteString(url.QueryEscape(title))
	}
	return b.String()
}

// CanvasIndex returns the 0-based canvas index of page ids such as "p0003"
// or "page_3", read from their trailing digits.
func CanvasIndex(pageID string) (int, bool) {
	end := len(pageID)
	start := end
	for start > 0 && pageID[start-1] >= '0' && pageID[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(pageID[start:end])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
