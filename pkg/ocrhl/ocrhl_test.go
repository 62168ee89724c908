package ocrhl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func box(parent int, ulx, uly, lrx, lry float64, text string) HighlightBox {
	return HighlightBox{Box: NewBox(ulx, uly, lrx, lry), ParentRegionIdx: parent, Text: text}
}

func testSnippet() OcrSnippet {
	return OcrSnippet{
		Pages: []Page{{ID: "p1", Width: 1000, Height: 1500}},
		Regions: []Region{
			{Box: NewBox(0, 0, 100, 50), Text: "first", PageIdx: 0},
			{Box: NewBox(0, 60, 100, 110), Text: "second", PageIdx: 0},
		},
		Highlights: [][]HighlightBox{
			{box(0, 1, 1, 10, 10, "a"), box(1, 2, 2, 20, 20, "b")},
			{box(0, 3, 3, 30, 30, "c")},
		},
	}
}

func TestRegionHighlights(t *testing.T) {
	snip := testSnippet()

	tests := []struct {
		name   string
		region int
		want   []string
	}{
		{name: "flattens groups in order", region: 0, want: []string{"a", "c"}},
		{name: "single match", region: 1, want: []string{"b"}},
		{name: "no match", region: 5, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RegionHighlights(snip, tt.region)
			texts := []string{}
			for _, hl := range got {
				assert.Equal(t, tt.region, hl.ParentRegionIdx)
				texts = append(texts, hl.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestRegionHighlights_EmptySnippet(t *testing.T) {
	empty := OcrSnippet{Regions: testSnippet().Regions}
	for idx := -1; idx < 3; idx++ {
		got := RegionHighlights(empty, idx)
		require.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Empty(t, RegionHighlights(OcrSnippet{}, 0))
}

func TestGroupByRegion(t *testing.T) {
	snip := testSnippet()
	snip.Highlights = append(snip.Highlights, []HighlightBox{box(9, 0, 0, 1, 1, "dangling")})

	groups := GroupByRegion(snip)
	require.Len(t, groups, 2)
	assert.Equal(t, RegionHighlights(snip, 0), groups[0])
	assert.Equal(t, RegionHighlights(snip, 1), groups[1])
}

func TestSanitize(t *testing.T) {
	snip := testSnippet()
	snip.Regions = append([]Region{{Box: NewBox(0, 0, 10, 10), PageIdx: 4}}, snip.Regions...)
	for g := range snip.Highlights {
		for b := range snip.Highlights[g] {
			snip.Highlights[g][b].ParentRegionIdx++
		}
	}
	snip.Highlights[1] = append(snip.Highlights[1], box(7, 0, 0, 5, 5, "dangling"), box(0, 0, 0, 5, 5, "orphan"))

	clean, issues := Sanitize(snip)
	require.Len(t, clean.Regions, 2)
	assert.Equal(t, "first", clean.Regions[0].Text)
	assert.Empty(t, Validate(clean))
	assert.Equal(t, []string{"a", "c"}, texts(RegionHighlights(clean, 0)))
	assert.Equal(t, []string{"b"}, texts(RegionHighlights(clean, 1)))

	kinds := map[IssueKind]int{}
	for _, is := range issues {
		kinds[is.Kind]++
	}
	assert.Equal(t, 1, kinds[IssuePageIndex])
	assert.Equal(t, 1, kinds[IssueRegionIndex])
}

func TestSanitize_CleanSnippetUnchanged(t *testing.T) {
	snip := testSnippet()
	clean, issues := Sanitize(snip)
	assert.Nil(t, issues)
	assert.Equal(t, snip, clean)
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, "highlight 1/2 references missing region 7",
		Issue{Kind: IssueRegionIndex, Group: 1, Index: 2, Ref: 7}.String())
	assert.Equal(t, "region 3 has empty geometry",
		Issue{Kind: IssueGeometry, Group: -1, Index: 3}.String())
}

func texts(boxes []HighlightBox) []string {
	out := []string{}
	for _, b := range boxes {
		out = append(out, b.Text)
	}
	return out
}

func TestDocumentJSON(t *testing.T) {
	raw := `{"id":"bnl:1","source":"lunion","title":"Der Landwirt","author":["Muller","Weber"],"year":1890}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "bnl:1", doc.ID)
	assert.Equal(t, "lunion", doc.Source)
	assert.Equal(t, []string{"title", "author", "year"}, doc.FieldNames())

	title, ok := doc.Field("title")
	require.True(t, ok)
	assert.False(t, title.Multi)
	assert.Equal(t, "Der Landwirt", title.First())

	author, _ := doc.Field("author")
	assert.True(t, author.Multi)
	assert.Equal(t, []string{"Muller", "Weber"}, author.Values)
	assert.Equal(t, "1890", doc.First("year"))

	out, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"bnl:1","source":"lunion","title":"Der Landwirt","author":["Muller","Weber"],"year":"1890"}`, string(out))
}

func TestDocumentClone(t *testing.T) {
	doc := NewDocument("x", "")
	doc.SetField("title", Single("a"))

	clone := doc.Clone()
	clone.SetField("title", Single("b"))

	assert.Equal(t, "a", doc.First("title"))
	assert.Equal(t, "b", clone.First("title"))
}

func TestRegionJSONShape(t *testing.T) {
	raw := `{"ulx":1.5,"uly":2,"lrx":30,"lry":40,"text":"word","pageIdx":1}`
	var r Region
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, NewBox(1.5, 2, 30, 40), r.Box)
	assert.Equal(t, 1, r.PageIdx)
	assert.Equal(t, 28.5, r.Width())
}

func TestResponseLookups(t *testing.T) {
	var resp *Response
	assert.Nil(t, resp.HighlightsFor("a"))
	assert.Equal(t, 0, resp.OcrFor("a").NumTotal)

	resp = &Response{OcrHighlighting: map[string]*OcrHighlighting{"a": {NumTotal: 3}}}
	assert.Equal(t, 3, resp.OcrFor("a").NumTotal)
	assert.Empty(t, resp.OcrFor("b").Snippets)
}

func TestDocumentYAML(t *testing.T) {
	doc := NewDocument("bookA", "gbooks")
	doc.SetField("title", Single("Zur <em>Geschichte</em>"))
	doc.SetField("author", Multiple("Meyer", "Schulz"))
	doc.SetField("date", Single("1890"))

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `id: bookA
source: gbooks
title: Zur <em>Geschichte</em>
author:
    - Meyer
    - Schulz
date: "1890"
`, string(data))
}
