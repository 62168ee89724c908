package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

func testDir() *Dir {
	return NewDir("testdata", "local", quietLogger())
}

// writeVolume writes an hOCR volume with one matching line per row
func writeVolume(t *testing.T, dir, id string, lines int) {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<html><head><title>Long volume</title></head><body>
<div class="ocr_page" id="page_1" title="bbox 0 0 2000 9000">
`)
	for i := 0; i < lines; i++ {
		y := 100 + i*100
		fmt.Fprintf(&b, `<span class="ocr_line" id="line_%d" title="bbox 100 %d 900 %d">`, i, y, y+50)
		fmt.Fprintf(&b, `<span class="ocrx_word" id="word_%d" title="bbox 100 %d 900 %d">Landes</span></span>`+"\n", i, y, y+50)
	}
	b.WriteString("</div></body></html>\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+Extension), []byte(b.String()), 0o644))
}

func TestDirIDs(t *testing.T) {
	ids, err := testDir().IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "volume_0042"}, ids)
}

func TestDirLoad(t *testing.T) {
	d := testDir()

	vol, err := d.Load("volume_0042")
	require.NoError(t, err)
	assert.Len(t, vol.Pages, 2)

	for _, id := range []string{"missing", "../search/testdata/volume_0042", "", ".."} {
		_, err := d.Load(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestDirSearch(t *testing.T) {
	resp, err := testDir().Search(context.Background(), Query{Q: "Landes"})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.NumFound)
	require.Len(t, resp.Docs, 1)
	doc := resp.Docs[0]
	assert.Equal(t, "volume_0042", doc.ID)
	assert.Equal(t, "local", doc.Source)
	assert.Equal(t, "Geschichte des Landes", doc.First("title"))
	assert.Equal(t, "Jean Schmit", doc.First("author"))
	assert.Equal(t, "de", doc.First("language"))

	assert.Equal(t, ocrhl.FieldHighlights{"title": {"Geschichte des <em>Landes</em>"}}, resp.HighlightsFor("volume_0042"))

	ocr := resp.OcrFor("volume_0042")
	assert.Equal(t, 2, ocr.NumTotal)
	require.Len(t, ocr.Snippets, 2)

	first := ocr.Snippets[0]
	assert.Equal(t, "Geschichte des <em>Landes</em>", first.Text)
	assert.Equal(t, []ocrhl.Page{{ID: "page_1", Width: 2000, Height: 3000}}, first.Pages)
	require.Len(t, first.Regions, 1)
	assert.Equal(t, ocrhl.NewBox(100, 100, 1000, 150), first.Regions[0].Box)
	require.Len(t, first.Highlights, 1)
	assert.Equal(t, ocrhl.HighlightBox{Box: ocrhl.NewBox(480, 0, 900, 50), Text: "Landes"}, first.Highlights[0][0])
	assert.Empty(t, ocrhl.Validate(first))

	second := ocr.Snippets[1]
	assert.Equal(t, "page_2", second.Pages[0].ID)
	assert.Equal(t, ocrhl.NewBox(0, 0, 600, 60), second.Highlights[0][0].Box)
}

func TestDirSearch_SnippetLimitKeepsTotal(t *testing.T) {
	resp, err := testDir().Search(context.Background(), Query{Q: "landes", Snippets: 1})
	require.NoError(t, err)

	ocr := resp.OcrFor("volume_0042")
	assert.Equal(t, 2, ocr.NumTotal)
	assert.Len(t, ocr.Snippets, 1)
}

func TestDirSearch_AllSnippets(t *testing.T) {
	root := t.TempDir()
	writeVolume(t, root, "long", 60)
	d := NewDir(root, "local", quietLogger())

	resp, err := d.Search(context.Background(), Query{Q: "landes", DocID: "long", AllSnippets: true})
	require.NoError(t, err)
	ocr := resp.OcrFor("long")
	assert.Equal(t, 60, ocr.NumTotal)
	assert.Len(t, ocr.Snippets, 60)

	// A regular query stays within the clamped snippet count
	resp, err = d.Search(context.Background(), Query{Q: "landes", Snippets: 500})
	require.NoError(t, err)
	ocr = resp.OcrFor("long")
	assert.Equal(t, 60, ocr.NumTotal)
	assert.Len(t, ocr.Snippets, MaxSnippets)
}

func TestDirSearch_Filters(t *testing.T) {
	d := testDir()
	ctx := context.Background()

	resp, err := d.Search(ctx, Query{Q: "landes", Sources: []string{"gbooks"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Docs)

	resp, err = d.Search(ctx, Query{Q: "landes", Sources: []string{"gbooks", "local"}})
	require.NoError(t, err)
	assert.Len(t, resp.Docs, 1)

	resp, err = d.Search(ctx, Query{Q: "landes", DocID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, resp.Docs)

	resp, err = d.Search(ctx, Query{Q: "Luxemburg OR 1890", DocID: "volume_0042"})
	require.NoError(t, err)
	ocr := resp.OcrFor("volume_0042")
	assert.Equal(t, 2, ocr.NumTotal)
	require.Len(t, ocr.Snippets, 1)
	assert.Equal(t, "<em>Luxemburg</em> <em>1890</em>", ocr.Snippets[0].Text)
	assert.Len(t, ocr.Snippets[0].Highlights, 2)
}

func TestDirSearch_NoMatch(t *testing.T) {
	resp, err := testDir().Search(context.Background(), Query{Q: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.NumFound)
	assert.Empty(t, resp.Docs)

	resp, err = testDir().Search(context.Background(), Query{Q: "  "})
	require.NoError(t, err)
	assert.Empty(t, resp.Docs)
}

func TestDirSearch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testDir().Search(ctx, Query{Q: "landes"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, map[string]bool{"new": true, "york": true}, queryTerms(`"New York" AND`))
	assert.Equal(t, "straße", normalize("Straße,"))
}
