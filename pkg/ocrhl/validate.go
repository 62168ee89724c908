package ocrhl

import "fmt"

// IssueKind classifies a data-shape problem in a snippet
type IssueKind string

const (
	IssuePageIndex   IssueKind = "page_index"   // Region.PageIdx out of range
	IssueRegionIndex IssueKind = "region_index" // HighlightBox.ParentRegionIdx out of range
	IssueGeometry    IssueKind = "geometry"     // zero or negative width/height
)

// Issue describes one data-quality problem found in a snippet.
// Group is -1 for region issues.
type Issue struct {
	Kind  IssueKind
	Group int // Highlight group index
	Index int // Region index, or box index within the group
	Ref   int // The offending reference value
}

func (i Issue) String() string {
	switch i.Kind {
	case IssuePageIndex:
		return fmt.Sprintf("region %d references missing page %d", i.Index, i.Ref)
	case IssueRegionIndex:
		return fmt.Sprintf("highlight %d/%d references missing region %d", i.Group, i.Index, i.Ref)
	case IssueGeometry:
		if i.Group < 0 {
			return fmt.Sprintf("region %d has empty geometry", i.Index)
		}
		return fmt.Sprintf("highlight %d/%d has empty geometry", i.Group, i.Index)
	}
	return string(i.Kind)
}

// Validate reports index and geometry problems without changing the snippet
func Validate(snippet OcrSnippet) []Issue {
	var issues []Issue
	for i, region := range snippet.Regions {
		if region.PageIdx < 0 || region.PageIdx >= len(snippet.Pages) {
			issues = append(issues, Issue{Kind: IssuePageIndex, Group: -1, Index: i, Ref: region.PageIdx})
		}
		if region.Empty() {
			issues = append(issues, Issue{Kind: IssueGeometry, Group: -1, Index: i})
		}
	}
	for g, group := range snippet.Highlights {
		for b, box := range group {
			if box.ParentRegionIdx < 0 || box.ParentRegionIdx >= len(snippet.Regions) {
				issues = append(issues, Issue{Kind: IssueRegionIndex, Group: g, Index: b, Ref: box.ParentRegionIdx})
			}
			if box.Empty() {
				issues = append(issues, Issue{Kind: IssueGeometry, Group: g, Index: b})
			}
		}
	}
	return issues
}

// Sanitize drops regions whose page cannot be resolved and highlight boxes
// whose region cannot be resolved, renumbering ParentRegionIdx so the
// remaining boxes still point at their regions. Geometry issues are reported
// but kept; the projector skips them at render time.
func Sanitize(snippet OcrSnippet) (OcrSnippet, []Issue) {
	issues := Validate(snippet)
	if len(issues) == 0 {
		return snippet, nil
	}

	out := OcrSnippet{
		Text:  snippet.Text,
		Pages: snippet.Pages,
	}
	remap := make([]int, len(snippet.Regions))
	for i, region := range snippet.Regions {
		if region.PageIdx < 0 || region.PageIdx >= len(snippet.Pages) {
			remap[i] = -1
			continue
		}
		remap[i] = len(out.Regions)
		out.Regions = append(out.Regions, region)
	}

	for _, group := range snippet.Highlights {
		kept := make([]HighlightBox, 0, len(group))
		for _, box := range group {
			if box.ParentRegionIdx < 0 || box.ParentRegionIdx >= len(remap) || remap[box.ParentRegionIdx] < 0 {
				continue
			}
			box.ParentRegionIdx = remap[box.ParentRegionIdx]
			kept = append(kept, box)
		}
		out.Highlights = append(out.Highlights, kept)
	}
	return out, issues
}
