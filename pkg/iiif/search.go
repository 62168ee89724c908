package iiif

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

var emPattern = regexp.MustCompile(`<em>(.+?)</em>`)

var emStripper = strings.NewReplacer("<em>", "", "</em>", "")

// AnnotationList is a IIIF Content Search 0 response
type AnnotationList struct {
	Context   []string     `json:"@context"`
	ID        string       `json:"@id"`
	Type      string       `json:"@type"`
	Within    Layer        `json:"within"`
	Resources []Annotation `json:"resources"`
	Hits      []Hit        `json:"hits"`
}

// Layer describes the result set
type Layer struct {
	Type    string   `json:"@type"`
	Total   int      `json:"total"`
	Ignored []string `json:"ignored"`
}

// Annotation places matched text on a canvas
type Annotation struct {
	ID         string       `json:"@id"`
	Type       string       `json:"@type"`
	Motivation string       `json:"motivation"`
	Resource   TextResource `json:"resource"`
	On         string       `json:"on"`
}

// TextResource is the matched text of an annotation
type TextResource struct {
	Type  string `json:"@type"`
	Chars string `json:"chars"`
}

// Hit groups the annotations of one match with its context
type Hit struct {
	Type        string   `json:"@type"`
	Annotations []string `json:"annotations"`
	Match       string   `json:"match"`
	Before      string   `json:"before"`
	After       string   `json:"after"`
}

// SearchBuilder creates annotation lists for volumes served under the
// manifest builder's base URL
type SearchBuilder struct {
	Manifests ManifestBuilder
	NewID     func() string // Defaults to random UUIDs
}

// Build converts the OCR highlighting of a volume into an annotation list.
// Every highlight group of a snippet becomes a hit; its boxes become
// annotations positioned at region offset plus box offset on the page's
// canvas. Boxes that cannot be resolved are dropped and returned as issues.
func (b SearchBuilder) Build(volumeID, query string, ignored []string, hl *ocrhl.OcrHighlighting) (*AnnotationList, []ocrhl.Issue) {
	newID := b.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	if ignored == nil {
		ignored = []string{}
	}

	list := &AnnotationList{
		Context:   []string{presentationContext, searchContext},
		ID:        b.Manifests.SearchURI(volumeID) + "?q=" + url.QueryEscape(query),
		Type:      "sc:AnnotationList",
		Within:    Layer{Type: "sc:Layer", Ignored: ignored},
		Resources: []Annotation{},
		Hits:      []Hit{},
	}
	if hl == nil {
		return list, nil
	}
	list.Within.Total = hl.NumTotal

	base := strings.TrimRight(b.Manifests.BaseURL, "/")
	var issues []ocrhl.Issue
	for _, raw := range hl.Snippets {
		snip, found := ocrhl.Sanitize(raw)
		issues = append(issues, found...)

		matches := emPattern.FindAllStringSubmatchIndex(snip.Text, -1)
		for idx, group := range snip.Highlights {
			hit := Hit{Type: "search:Hit", Annotations: []string{}}
			if idx < len(matches) {
				m := matches[idx]
				hit.Match = snip.Text[m[2]:m[3]]
				hit.Before = emStripper.Replace(snip.Text[:m[0]])
				hit.After = emStripper.Replace(snip.Text[m[1]:])
			} else {
				hit.Match = groupText(group)
			}

			for _, box := range group {
				region := snip.Regions[box.ParentRegionIdx]
				page := snip.Pages[region.PageIdx]
				x := int(region.Ulx + box.Ulx)
				y := int(region.Uly + box.Uly)
				w := int(box.Width())
				h := int(box.Height())

				id := fmt.Sprintf("%s/%s/annotation/%s", base, volumeID, newID())
				hit.Annotations = append(hit.Annotations, id)
				list.Resources = append(list.Resources, Annotation{
					ID:         id,
					Type:       "oa:Annotation",
					Motivation: "sc:painting",
					Resource:   TextResource{Type: "cnt:ContentAsText", Chars: box.Text},
					On:         fmt.Sprintf("%s#xywh=%d,%d,%d,%d", b.Manifests.CanvasURI(volumeID, page.ID), x, y, w, h),
				})
			}
			list.Hits = append(list.Hits, hit)
		}
	}
	return list, issues
}

func groupText(group []ocrhl.HighlightBox) string {
	parts := make([]string, 0, len(group))
	for _, box := range group {
		parts = append(parts, box.Text)
	}
	return strings.Join(parts, " ")
}
