package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gardar/ocrlens/pkg/results"
	"github.com/gardar/ocrlens/pkg/search"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /iiif/presentation/{id}/manifest", s.handleManifest)
	mux.HandleFunc("GET /iiif/presentation/{id}/search", s.handleContentSearch)
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSearch runs a query and returns the assembled results.
// source may be repeated or comma separated; width is the rendered width of
// region images in pixels and enables highlight rectangles.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := strings.TrimSpace(params.Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	query := search.Query{Q: q, Sources: s.cfg.Sources, Snippets: s.cfg.DefaultSnippets}
	if v := params.Get("snippets"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "snippets must be an integer")
			return
		}
		query.Snippets = n
	}
	if v := params.Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "rows must be a non-negative integer")
			return
		}
		query.Rows = n
	}
	if sources := splitList(params["source"]); len(sources) > 0 {
		query.Sources = sources
	}

	opts := results.Options{Query: q}
	if v := params.Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil || width < 0 {
			writeError(w, http.StatusBadRequest, "width must be a non-negative number")
			return
		}
		opts.ScreenWidth = width
	}
	if v := params.Get("crop_width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "crop_width must be an integer")
			return
		}
		opts.CropWidth = n
	}

	resp, err := s.cfg.Searcher.Search(r.Context(), query)
	if err != nil {
		s.searchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentAssembler().Assemble(resp, opts))
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.cfg.Volumes == nil {
		writeError(w, http.StatusNotFound, "manifests are not available")
		return
	}
	vol, err := s.cfg.Volumes.Load(id)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown volume "+id)
			return
		}
		s.logger.Error("failed to load volume", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load volume")
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, s.cfg.Annotations.Manifests.Build(id, vol))
}

// handleContentSearch answers IIIF Content Search requests for one volume.
// Every hit is returned; parameters other than q are reported as ignored.
func (s *Server) handleContentSearch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	params := r.URL.Query()
	q := strings.TrimSpace(params.Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	resp, err := s.cfg.Searcher.Search(r.Context(), search.Query{Q: q, DocID: id, AllSnippets: true})
	if err != nil {
		s.searchError(w, r, err)
		return
	}

	var ignored []string
	for key := range params {
		if key != "q" {
			ignored = append(ignored, key)
		}
	}
	sort.Strings(ignored)

	list, issues := s.cfg.Annotations.Build(id, q, ignored, resp.OcrFor(id))
	for _, issue := range issues {
		s.logger.Warn("invalid OCR highlighting", "doc", id, "issue", issue.String())
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, list)
}

// searchError maps a backend failure to a response
func (s *Server) searchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, search.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, search.ErrBackend):
		s.logger.Error("search backend error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "search backend error")
	default:
		s.logger.Error("search failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
	}
}

// splitList flattens repeated and comma separated values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
