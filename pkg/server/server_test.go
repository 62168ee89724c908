package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrlens/pkg/iiif"
	"github.com/gardar/ocrlens/pkg/ocrhl"
	"github.com/gardar/ocrlens/pkg/overlay"
	"github.com/gardar/ocrlens/pkg/results"
	"github.com/gardar/ocrlens/pkg/search"
)

const baseURL = "http://lens.example.org/iiif/presentation"

// stubSearcher records the last query and returns a fixed answer
type stubSearcher struct {
	last search.Query
	resp *ocrhl.Response
	err  error
}

func (s *stubSearcher) Search(_ context.Context, q search.Query) (*ocrhl.Response, error) {
	s.last = q
	return s.resp, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, searcher search.Searcher) *httptest.Server {
	t.Helper()
	logger := quietLogger()
	manifests := iiif.ManifestBuilder{BaseURL: baseURL, ImageAPIBase: "http://img.example.org"}
	srv, err := New(Config{
		Searcher: searcher,
		Volumes:  search.NewDir("testdata", "local", logger),
		Assembler: results.NewAssembler(
			iiif.NewLocator("http://img.example.org"),
			overlay.NewProjector(overlay.DefaultConfig()),
			manifests, logger),
		Annotations: iiif.SearchBuilder{
			Manifests: manifests,
			NewID:     func() string { return "fixed" },
		},
		Sources:         []string{"gbooks", "lunion"},
		DefaultSnippets: 10,
		Logger:          logger,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubSearcher{})
	var body HealthResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", &body))
	assert.Equal(t, "ok", body.Status)
}

func TestSearch(t *testing.T) {
	dir := search.NewDir("testdata", "lunion", quietLogger())
	stub := &stubSearcher{}
	ts := newTestServer(t, stub)

	var err error
	stub.resp, err = dir.Search(context.Background(), search.Query{Q: "landes"})
	require.NoError(t, err)

	var page results.Page
	status := getJSON(t, ts.URL+"/search?q=landes&snippets=3&source=lunion&width=450", &page)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, search.Query{Q: "landes", Sources: []string{"lunion"}, Snippets: 3}, stub.last)
	assert.Equal(t, "landes", page.Query)
	require.Len(t, page.Documents, 1)

	doc := page.Documents[0]
	assert.Equal(t, "volume_0042", doc.ID)
	assert.Equal(t, 2, doc.NumTotal)
	assert.Equal(t, baseURL+"/volume_0042/manifest", doc.ManifestURI)
	assert.Equal(t, "Geschichte des <em>Landes</em>", doc.Fields.First("title"))

	region := doc.Snippets[0].Regions[0]
	assert.Equal(t, "http://img.example.org/volume_0042%2Fpage_1.jpg/100,100,900,50/max,/0/default.jpg", region.CropURL)
	require.Len(t, region.Rects, 1)
	// 450px for a 900 unit wide line halves every coordinate
	assert.Equal(t, overlay.Rect{Left: 240, Top: 0, Width: 210, Height: 25, Title: "Landes"}, region.Rects[0])
}

func TestSearch_Defaults(t *testing.T) {
	stub := &stubSearcher{resp: &ocrhl.Response{}}
	ts := newTestServer(t, stub)

	var page results.Page
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/search?q=x&source=a,b&source=c", &page))
	assert.Equal(t, []string{"a", "b", "c"}, stub.last.Sources)
	assert.Equal(t, 10, stub.last.Snippets)
	assert.Empty(t, page.Documents)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/search?q=x", &page))
	assert.Equal(t, []string{"gbooks", "lunion"}, stub.last.Sources)
}

func TestSearch_BadRequests(t *testing.T) {
	ts := newTestServer(t, &stubSearcher{resp: &ocrhl.Response{}})

	for _, path := range []string{
		"/search",
		"/search?q=%20",
		"/search?q=x&snippets=many",
		"/search?q=x&width=wide",
		"/search?q=x&width=-1",
		"/search?q=x&rows=-5",
		"/search?q=x&crop_width=big",
		"/iiif/presentation/volume_0042/search",
	} {
		var body ErrorResponse
		assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+path, &body), path)
		assert.NotEmpty(t, body.Error, path)
	}
}

func TestSearch_BackendErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: status 500", search.ErrBackend), http.StatusBadGateway},
		{fmt.Errorf("%w: gone", search.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		ts := newTestServer(t, &stubSearcher{err: tt.err})
		var body ErrorResponse
		assert.Equal(t, tt.status, getJSON(t, ts.URL+"/search?q=x", &body), tt.err.Error())
	}
}

func TestManifest(t *testing.T) {
	ts := newTestServer(t, &stubSearcher{})

	var m iiif.Manifest
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/iiif/presentation/volume_0042/manifest", &m))
	assert.Equal(t, baseURL+"/volume_0042/manifest", m.ID)
	assert.Equal(t, "Geschichte des Landes", m.Label)
	require.Len(t, m.Sequences, 1)
	assert.Len(t, m.Sequences[0].Canvases, 2)

	var body ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/iiif/presentation/nope/manifest", &body))
}

func TestContentSearch(t *testing.T) {
	dir := search.NewDir("testdata", "local", quietLogger())
	ts := newTestServer(t, dir)

	var list iiif.AnnotationList
	status := getJSON(t, ts.URL+"/iiif/presentation/volume_0042/search?q=Landes&motivation=painting", &list)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, baseURL+"/volume_0042/search?q=Landes", list.ID)
	assert.Equal(t, []string{"motivation"}, list.Within.Ignored)
	assert.Equal(t, 2, list.Within.Total)
	require.Len(t, list.Resources, 2)
	assert.Equal(t, baseURL+"/volume_0042/canvas/page_1#xywh=580,100,420,50", list.Resources[0].On)
	assert.Equal(t, baseURL+"/volume_0042/canvas/page_2#xywh=200,100,600,60", list.Resources[1].On)
	assert.Equal(t, baseURL+"/volume_0042/annotation/fixed", list.Resources[0].ID)
	require.Len(t, list.Hits, 2)
	assert.Equal(t, "Landes", list.Hits[0].Match)
	assert.Equal(t, "Geschichte des ", list.Hits[0].Before)
}

func TestContentSearch_ReturnsEveryHit(t *testing.T) {
	root := t.TempDir()
	var b strings.Builder
	b.WriteString(`<html><body><div class="ocr_page" id="page_1" title="bbox 0 0 2000 9000">` + "\n")
	for i := 0; i < 60; i++ {
		y := 100 + i*100
		fmt.Fprintf(&b, `<span class="ocr_line" title="bbox 100 %d 900 %d">`, y, y+50)
		fmt.Fprintf(&b, `<span class="ocrx_word" title="bbox 100 %d 900 %d">Landes</span></span>`+"\n", y, y+50)
	}
	b.WriteString("</div></body></html>\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "vol.hocr"), []byte(b.String()), 0o644))

	ts := newTestServer(t, search.NewDir(root, "local", quietLogger()))

	var list iiif.AnnotationList
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/iiif/presentation/vol/search?q=Landes", &list))
	assert.Equal(t, 60, list.Within.Total)
	assert.Len(t, list.Hits, 60)
	assert.Len(t, list.Resources, 60)
}

func TestStart(t *testing.T) {
	srv, err := New(Config{Addr: "127.0.0.1:0", Searcher: &stubSearcher{}, Logger: quietLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, srv.IsRunning, 5*time.Second, 10*time.Millisecond)
	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, srv.IsRunning())
}

func TestNew_RequiresSearcher(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
