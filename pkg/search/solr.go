package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

// Default Solr request settings
const (
	DefaultCore            = "ocr"
	DefaultFieldList       = "id,source,issue_id,title,subtitle,newspaper_part,author,publisher,date,language"
	DefaultQueryFields     = "title^20.0 subtitle^16.0 author^10.0 newspaper_part^5.0 publisher^5.0 ocr_text^0.3"
	DefaultHighlightFields = "title,subtitle,author,publisher"
	DefaultOcrField        = "ocr_text"
)

// ClientConfig holds the settings of a Solr client
type ClientConfig struct {
	BaseURL         string        // e.g. http://127.0.0.1:8983/solr
	Core            string        // Defaults to DefaultCore
	FieldList       string        // fl
	QueryFields     string        // qf
	HighlightFields string        // hl.fl
	OcrField        string        // hl.ocr.fl
	Timeout         time.Duration // Per request
	Attempts        uint          // Total tries for transient failures
	RetryDelay      time.Duration
	Logger          *slog.Logger
}

// DefaultClientConfig returns settings for a local Solr with the OCR core
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:         "http://127.0.0.1:8983/solr",
		Core:            DefaultCore,
		FieldList:       DefaultFieldList,
		QueryFields:     DefaultQueryFields,
		HighlightFields: DefaultHighlightFields,
		OcrField:        DefaultOcrField,
		Timeout:         30 * time.Second,
		Attempts:        3,
		RetryDelay:      500 * time.Millisecond,
	}
}

// Client is a Searcher backed by a Solr select handler
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Solr client. Empty settings take their defaults.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Core == "" {
		cfg.Core = def.Core
	}
	if cfg.FieldList == "" {
		cfg.FieldList = def.FieldList
	}
	if cfg.QueryFields == "" {
		cfg.QueryFields = def.QueryFields
	}
	if cfg.HighlightFields == "" {
		cfg.HighlightFields = def.HighlightFields
	}
	if cfg.OcrField == "" {
		cfg.OcrField = def.OcrField
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = def.Attempts
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// SelectURL returns the select handler endpoint
func (c *Client) SelectURL() string {
	return fmt.Sprintf("%s/%s/select", c.cfg.BaseURL, c.cfg.Core)
}

// Params builds the select parameters for a query
func (c *Client) Params(q Query) url.Values {
	p := url.Values{}
	p.Set("q", q.Q)
	p.Set("defType", "edismax")
	p.Set("fl", c.cfg.FieldList)
	p.Set("qf", c.cfg.QueryFields)
	p.Set("hl", "on")
	p.Set("hl.fl", c.cfg.HighlightFields)
	p.Set("hl.ocr.fl", c.cfg.OcrField)
	p.Set("hl.snippets", strconv.Itoa(q.snippetLimit()))
	p.Set("hl.weightMatches", "true")
	p.Set("rows", strconv.Itoa(q.rows()))
	if src, ok := q.source(); ok {
		p.Add("fq", "source:"+src)
	}
	if q.DocID != "" {
		// The term parser takes the id verbatim, colons and spaces included
		p.Add("fq", "{!term f=id}"+q.DocID)
	}
	return p
}

// Search runs a query against the select handler. Network errors and 5xx
// answers are retried; other failures are returned at once.
func (c *Client) Search(ctx context.Context, q Query) (*ocrhl.Response, error) {
	endpoint := c.SelectURL() + "?" + c.Params(q).Encode()

	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.fetch(ctx, endpoint)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("retrying search", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.decode(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("search completed", "q", q.Q, "numFound", resp.NumFound, "qTime", resp.QTime)
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query solr: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read solr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, errorMessage(body))
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}
	return body, nil
}

type selectResponse struct {
	ResponseHeader struct {
		QTime int `json:"QTime"`
	} `json:"responseHeader"`
	Response struct {
		NumFound int               `json:"numFound"`
		Docs     []*ocrhl.Document `json:"docs"`
	} `json:"response"`
	Highlighting    map[string]ocrhl.FieldHighlights              `json:"highlighting"`
	OcrHighlighting map[string]map[string]*ocrhl.OcrHighlighting `json:"ocrHighlighting"`
}

// decode converts a select response body into a Response, picking the
// configured OCR field out of the per-document OCR highlighting
func (c *Client) decode(body []byte) (*ocrhl.Response, error) {
	var raw selectResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode solr response: %w", err)
	}

	resp := &ocrhl.Response{
		NumFound:     raw.Response.NumFound,
		QTime:        raw.ResponseHeader.QTime,
		Docs:         raw.Response.Docs,
		Highlighting: raw.Highlighting,
	}
	if len(raw.OcrHighlighting) > 0 {
		resp.OcrHighlighting = make(map[string]*ocrhl.OcrHighlighting, len(raw.OcrHighlighting))
		for id, fields := range raw.OcrHighlighting {
			if hl := fields[c.cfg.OcrField]; hl != nil {
				resp.OcrHighlighting[id] = hl
			}
		}
	}
	return resp, nil
}

// errorMessage extracts error.msg from a Solr error body
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Msg != "" {
		return e.Error.Msg
	}
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
