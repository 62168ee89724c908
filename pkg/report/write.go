package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrlens/pkg/highlight"
	"github.com/gardar/ocrlens/pkg/overlay"
	"github.com/gardar/ocrlens/pkg/results"
)

// Writer renders results pages into PDF documents
type Writer struct {
	cfg       Config
	fetcher   ImageFetcher
	projector *overlay.Projector
	logger    *slog.Logger
}

// NewWriter creates a report writer. Empty settings take their defaults.
func NewWriter(cfg Config, fetcher ImageFetcher) *Writer {
	def := DefaultConfig()
	if cfg.LayerName == "" {
		cfg.LayerName = def.LayerName
	}
	if cfg.ImageWidth <= 0 {
		cfg.ImageWidth = def.ImageWidth
	}
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	if cfg.HighlightAlpha <= 0 {
		cfg.HighlightAlpha = def.HighlightAlpha
	}
	if cfg.Font.Name == "" {
		cfg.Font = def.Font
	}
	return &Writer{
		cfg:       cfg,
		fetcher:   fetcher,
		projector: overlay.NewProjector(overlay.DefaultConfig()),
		logger:    cfg.logger(),
	}
}

// Write renders page into a new PDF
func (w *Writer) Write(ctx context.Context, page *results.Page) ([]byte, error) {
	if page == nil {
		return nil, errors.New("no results to render")
	}
	if w.fetcher == nil {
		return nil, errors.New("no image fetcher configured")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(w.cfg.Margin, w.cfg.Margin, w.cfg.Margin)
	pdf.SetAutoPageBreak(true, w.cfg.Margin)
	pdf.SetTitle(w.cfg.Title, true)
	pdf.SetCreator("ocrlens", true)

	r := &renderer{
		Writer: w,
		pdf:    pdf,
		layer:  pdf.AddLayer(w.cfg.LayerName, true),
		images: make(map[string]*pageImage),
	}

	pdf.AddPage()
	r.header(page)
	for _, doc := range page.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.document(ctx, doc)
	}

	if r.encodingErrors > 0 {
		w.logger.Warn("characters outside Latin-1 were replaced", "strings", r.encodingErrors)
	}
	if pdf.Err() {
		return nil, fmt.Errorf("failed to render report: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// pageImage is a fetched image registered with the PDF
type pageImage struct {
	name string
	opts fpdf.ImageOptions
	size image.Config
}

// renderer holds the state of one Write call
type renderer struct {
	*Writer
	pdf            *fpdf.Fpdf
	layer          int
	images         map[string]*pageImage // By URL; nil marks a failed fetch
	encodingErrors int
}

func (r *renderer) lineHeight(size float64) float64 {
	return size * r.cfg.Font.LineHeight
}

func (r *renderer) contentWidth() float64 {
	pageW, _ := r.pdf.GetPageSize()
	return pageW - 2*r.cfg.Margin
}

func (r *renderer) header(page *results.Page) {
	f := r.cfg.Font
	r.pdf.SetFont(f.Name, "B", f.HeadingSize+4)
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(f.HeadingSize+4), r.text(r.cfg.Title), "", "L", false)

	r.pdf.SetFont(f.Name, f.Style, f.Size)
	summary := fmt.Sprintf("Query: %s  |  %d documents found", page.Query, page.NumFound)
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(f.Size), r.text(summary), "", "L", false)
	r.pdf.Ln(r.lineHeight(f.Size))
}

func (r *renderer) document(ctx context.Context, doc results.DocumentView) {
	f := r.cfg.Font
	r.pdf.SetFont(f.Name, "B", f.HeadingSize)
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(f.HeadingSize), r.text(highlight.Default.Strip(doc.Heading)), "", "L", false)

	r.pdf.SetFont(f.Name, "I", f.Size)
	count := "No matches"
	if !doc.NoMatches {
		count = fmt.Sprintf("Matches in document: %d", doc.NumTotal)
	}
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(f.Size), r.text(count), "", "L", false)
	r.pdf.Ln(r.lineHeight(f.Size) / 2)

	r.pdf.SetFont(f.Name, f.Style, f.Size)
	for _, snip := range doc.Snippets {
		for _, region := range snip.Regions {
			r.region(ctx, doc.ID, region)
		}
	}
	r.pdf.Ln(r.lineHeight(f.Size))
}

// region draws one region image with its highlight boxes and text
func (r *renderer) region(ctx context.Context, docID string, region results.RegionView) {
	f := r.cfg.Font
	img := r.image(ctx, docID, region.CropURL)
	if img == nil {
		r.pdf.MultiCell(r.contentWidth(), r.lineHeight(f.Size), r.text(fmt.Sprintf("[image unavailable: %s]", region.PageID)), "", "L", false)
		return
	}

	width := min(r.cfg.ImageWidth, r.contentWidth())
	height := width * float64(img.size.Height) / float64(img.size.Width)
	_, pageH := r.pdf.GetPageSize()
	if r.pdf.GetY()+height+r.lineHeight(f.Size) > pageH-r.cfg.Margin {
		r.pdf.AddPage()
	}

	x, y := r.cfg.Margin, r.pdf.GetY()
	link := ""
	if strings.HasPrefix(region.ViewerURL, "http") {
		link = region.ViewerURL
	}
	r.pdf.ImageOptions(img.name, x, y, width, height, false, img.opts, 0, link)

	// The crop covers exactly the region box, so the rendered image width
	// is the screen width of the projection.
	rects := r.projector.ProjectAll(width, region.Box, region.Highlights)
	if len(rects) > 0 {
		c := r.cfg.HighlightColor
		r.pdf.BeginLayer(r.layer)
		r.pdf.SetFillColor(c[0], c[1], c[2])
		r.pdf.SetAlpha(r.cfg.HighlightAlpha, "Multiply")
		for _, rect := range rects {
			r.pdf.Rect(x+rect.Left, y+rect.Top, rect.Width, rect.Height, "F")
		}
		r.pdf.SetAlpha(1, "Normal")
		r.pdf.EndLayer()
	}

	if r.cfg.Debug {
		r.pdf.SetDrawColor(255, 0, 0)
		r.pdf.Rect(x, y, width, height, "D")
		for _, rect := range rects {
			r.pdf.Rect(x+rect.Left, y+rect.Top, rect.Width, rect.Height, "D")
		}
		r.pdf.SetDrawColor(0, 0, 0)
	}

	r.pdf.SetXY(x, y+height+2)
	r.pdf.MultiCell(width, r.lineHeight(f.Size), r.text(highlight.Default.Strip(region.Text)), "", "L", false)
	r.pdf.Ln(r.lineHeight(f.Size) / 2)
}

// image fetches and registers an image once per URL
func (r *renderer) image(ctx context.Context, docID, url string) *pageImage {
	if img, ok := r.images[url]; ok {
		return img
	}
	r.images[url] = nil

	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.logger.Warn("skipping region image", "doc", docID, "url", url, "error", err)
		return nil
	}
	imageType, size, err := detectImageType(data)
	if err != nil || size.Width == 0 || size.Height == 0 {
		r.logger.Warn("skipping region image with invalid format", "doc", docID, "url", url, "error", err)
		return nil
	}

	img := &pageImage{
		name: fmt.Sprintf("img%d", len(r.images)),
		opts: fpdf.ImageOptions{ReadDpi: false, ImageType: imageType},
		size: size,
	}
	r.pdf.RegisterImageOptionsReader(img.name, img.opts, bytes.NewReader(data))
	r.images[url] = img
	return img
}

// text converts s to ISO-8859-1 for the core fonts, replacing what cannot
// be represented
func (r *renderer) text(s string) string {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err == nil {
		return latin1
	}
	r.encodingErrors++
	latin1, _ = encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).String(s)
	return latin1
}
