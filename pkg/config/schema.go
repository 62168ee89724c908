package config

import (
	"time"
)

// Config is the ocrlens configuration
type Config struct {
	ImageAPIBase       string       `mapstructure:"image_api_base" yaml:"image_api_base"`             // IIIF Image API server
	SnippetScaleFactor float64      `mapstructure:"snippet_scale_factor" yaml:"snippet_scale_factor"` // vw of a full-width region
	ServerURL          string       `mapstructure:"server_url" yaml:"server_url"`                     // Public base URL of this service
	LibraryName        string       `mapstructure:"library_name" yaml:"library_name"`
	Backend            string       `mapstructure:"backend" yaml:"backend"` // "solr" or "hocr"
	HocrDir            string       `mapstructure:"hocr_dir" yaml:"hocr_dir"`
	LogLevel           string       `mapstructure:"log_level" yaml:"log_level"`
	Sources            []string     `mapstructure:"sources" yaml:"sources"`
	DefaultSnippets    int          `mapstructure:"default_snippets" yaml:"default_snippets"`
	Solr               SolrConfig   `mapstructure:"solr" yaml:"solr"`
	Server             ServerConfig `mapstructure:"server" yaml:"server"`
}

// SolrConfig configures the Solr backend
type SolrConfig struct {
	Base       string        `mapstructure:"base" yaml:"base"`
	Core       string        `mapstructure:"core" yaml:"core"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Attempts   uint          `mapstructure:"attempts" yaml:"attempts"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Backend names
const (
	BackendSolr = "solr"
	BackendHOCR = "hocr"
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		ImageAPIBase:       "http://127.0.0.1:8080/iiif/2",
		SnippetScaleFactor: 50,
		ServerURL:          "http://127.0.0.1:8008",
		LibraryName:        "OCR Search",
		Backend:            BackendSolr,
		HocrDir:            "./data",
		LogLevel:           "info",
		Sources:            []string{"gbooks", "lunion"},
		DefaultSnippets:    10,
		Solr: SolrConfig{
			Base:       "http://127.0.0.1:8983/solr",
			Core:       "ocr",
			Timeout:    30 * time.Second,
			Attempts:   3,
			RetryDelay: 500 * time.Millisecond,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8008,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}
