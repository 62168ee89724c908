package iiif

import (
	"fmt"
	"strings"

	"github.com/gardar/ocrlens/pkg/hocr"
)

const (
	presentationContext = "http://iiif.io/api/presentation/2/context.json"
	imageContext        = "http://iiif.io/api/image/2/context.json"
	imageProfile        = "http://iiif.io/api/image/2/level1.json"
	searchContext       = "http://iiif.io/api/search/0/context.json"
	searchProfile       = "http://iiif.io/api/search/0/search"
)

// Manifest is a IIIF Presentation 2 manifest
type Manifest struct {
	Context   string          `json:"@context"`
	ID        string          `json:"@id"`
	Type      string          `json:"@type"`
	Label     string          `json:"label"`
	Metadata  []MetadataEntry `json:"metadata,omitempty"`
	Service   *Service        `json:"service,omitempty"`
	Sequences []Sequence      `json:"sequences"`
}

// MetadataEntry is a label/value pair shown by viewers
type MetadataEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Service links a resource to an API endpoint
type Service struct {
	Context string `json:"@context"`
	ID      string `json:"@id"`
	Profile string `json:"profile"`
}

// Sequence is the ordered list of canvases
type Sequence struct {
	ID       string   `json:"@id"`
	Type     string   `json:"@type"`
	Canvases []Canvas `json:"canvases"`
}

// Canvas is one page of the volume
type Canvas struct {
	ID     string            `json:"@id"`
	Type   string            `json:"@type"`
	Label  string            `json:"label"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Images []ImageAnnotation `json:"images"`
}

// ImageAnnotation paints an image onto a canvas
type ImageAnnotation struct {
	Type       string        `json:"@type"`
	Motivation string        `json:"motivation"`
	Resource   ImageResource `json:"resource"`
	On         string        `json:"on"`
}

// ImageResource is the full page image
type ImageResource struct {
	ID      string   `json:"@id"`
	Type    string   `json:"@type"`
	Format  string   `json:"format"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Service *Service `json:"service,omitempty"`
}

// ManifestBuilder creates manifests for volumes served under BaseURL
type ManifestBuilder struct {
	BaseURL      string // e.g. https://example.org/iiif/presentation
	ImageAPIBase string // Image API server base URL
}

// ManifestURI returns the manifest URI of a volume
func (b ManifestBuilder) ManifestURI(volumeID string) string {
	return fmt.Sprintf("%s/%s/manifest", strings.TrimRight(b.BaseURL, "/"), volumeID)
}

// CanvasURI returns the canvas URI of a page
func (b ManifestBuilder) CanvasURI(volumeID, pageID string) string {
	return fmt.Sprintf("%s/%s/canvas/%s", strings.TrimRight(b.BaseURL, "/"), volumeID, pageID)
}

// SearchURI returns the content search endpoint of a volume
func (b ManifestBuilder) SearchURI(volumeID string) string {
	return fmt.Sprintf("%s/%s/search", strings.TrimRight(b.BaseURL, "/"), volumeID)
}

// Build creates the manifest of a volume from its hOCR.
// The label is the Dublin Core title, falling back to the volume id.
func (b ManifestBuilder) Build(volumeID string, doc *hocr.HOCR) *Manifest {
	m := &Manifest{
		Context: presentationContext,
		ID:      b.ManifestURI(volumeID),
		Type:    "sc:Manifest",
		Label:   volumeID,
		Service: &Service{
			Context: searchContext,
			ID:      b.SearchURI(volumeID),
			Profile: searchProfile,
		},
	}
	if title := doc.DC("title"); title != "" {
		m.Label = title
	}
	for _, meta := range doc.DublinCore {
		m.Metadata = append(m.Metadata, MetadataEntry{Label: meta.Name, Value: meta.Value})
	}

	imageBase := strings.TrimRight(b.ImageAPIBase, "/")
	seq := Sequence{
		ID:       fmt.Sprintf("%s/%s/sequence/normal", strings.TrimRight(b.BaseURL, "/"), volumeID),
		Type:     "sc:Sequence",
		Canvases: make([]Canvas, 0, len(doc.Pages)),
	}
	for _, page := range doc.Pages {
		canvasID := b.CanvasURI(volumeID, page.ID)
		width := int(page.BBox.Width())
		height := int(page.BBox.Height())
		imageService := imageBase + "/" + ImageID(volumeID, page.ID)

		seq.Canvases = append(seq.Canvases, Canvas{
			ID:     canvasID,
			Type:   "sc:Canvas",
			Label:  fmt.Sprintf("%d", page.PageNumber),
			Width:  width,
			Height: height,
			Images: []ImageAnnotation{{
				Type:       "oa:Annotation",
				Motivation: "sc:painting",
				On:         canvasID,
				Resource: ImageResource{
					ID:     imageService + "/full/full/0/default.jpg",
					Type:   "dctypes:Image",
					Format: "image/jpeg",
					Width:  width,
					Height: height,
					Service: &Service{
						Context: imageContext,
						ID:      imageService,
						Profile: imageProfile,
					},
				},
			}},
		})
	}
	m.Sequences = []Sequence{seq}
	return m
}
