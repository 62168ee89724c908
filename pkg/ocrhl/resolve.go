package ocrhl

// RegionHighlights returns the highlight boxes overlaying one region.
// The snippet's highlight groups are flattened and filtered by
// ParentRegionIdx; relative order is kept. No match yields an empty slice.
func RegionHighlights(snippet OcrSnippet, regionIdx int) []HighlightBox {
	out := []HighlightBox{}
	for _, group := range snippet.Highlights {
		for _, box := range group {
			if box.ParentRegionIdx == regionIdx {
				out = append(out, box)
			}
		}
	}
	return out
}

// GroupByRegion returns the highlight boxes of every region, indexed like
// snippet.Regions. Boxes pointing outside the regions are left out.
func GroupByRegion(snippet OcrSnippet) [][]HighlightBox {
	groups := make([][]HighlightBox, len(snippet.Regions))
	for i := range groups {
		groups[i] = []HighlightBox{}
	}
	for _, group := range snippet.Highlights {
		for _, box := range group {
			if box.ParentRegionIdx < 0 || box.ParentRegionIdx >= len(groups) {
				continue
			}
			groups[box.ParentRegionIdx] = append(groups[box.ParentRegionIdx], box)
		}
	}
	return groups
}

// PageOf returns the page a region sits on
func PageOf(snippet OcrSnippet, region Region) (Page, bool) {
	if region.PageIdx < 0 || region.PageIdx >= len(snippet.Pages) {
		return Page{}, false
	}
	return snippet.Pages[region.PageIdx], true
}
