package report

import (
	"log/slog"
)

// Config holds the options of a results report
type Config struct {
	Title          string       // Document title, printed on the first page
	Debug          bool         // Outline region images and highlight boxes
	LayerName      string       // Name of the highlight layer
	ImageWidth     float64      // Width of region images on the page, in pt
	Margin         float64      // Page margin, in pt
	HighlightColor [3]int       // RGB fill of highlight boxes
	HighlightAlpha float64      // Opacity of highlight boxes
	Logger         *slog.Logger // nil = slog.Default()
	Font           FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Title:          "Search results",
		LayerName:      "Highlights",
		ImageWidth:     480,
		Margin:         40,
		HighlightColor: [3]int{255, 212, 0},
		HighlightAlpha: 0.4,
		Font:           DefaultFont,
	}
}

// FontConfig contains font settings for report text
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Body font size
	HeadingSize float64 // Document heading font size
	LineHeight  float64 // Line height as a multiple of the font size
}

// DefaultFont uses the core Helvetica font, which needs no embedding
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        9,
	HeadingSize: 13,
	LineHeight:  1.3,
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
