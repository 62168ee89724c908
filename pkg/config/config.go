// Package config loads the ocrlens configuration from defaults, an optional
// YAML file and CFG_-prefixed environment variables, and reloads it when the
// file changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrlens/pkg/overlay"
	"github.com/gardar/ocrlens/pkg/search"
)

// EnvPrefix prefixes every environment override, e.g. CFG_SOLR_BASE
const EnvPrefix = "CFG"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches ./ocrlens.yaml and $HOME/.ocrlens/ocrlens.yaml.
func NewManager(cfgFile string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
		logger:    logger,
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("image_api_base", d.ImageAPIBase)
	v.SetDefault("snippet_scale_factor", d.SnippetScaleFactor)
	v.SetDefault("server_url", d.ServerURL)
	v.SetDefault("library_name", d.LibraryName)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("hocr_dir", d.HocrDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("default_snippets", d.DefaultSnippets)
	v.SetDefault("solr.base", d.Solr.Base)
	v.SetDefault("solr.core", d.Solr.Core)
	v.SetDefault("solr.timeout", d.Solr.Timeout)
	v.SetDefault("solr.attempts", d.Solr.Attempts)
	v.SetDefault("solr.retry_delay", d.Solr.RetryDelay)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	// Environment variables with CFG_ prefix; nested keys use underscores
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ocrlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ocrlens")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// File returns the config file in use, or "" when running on defaults.
func (cm *Manager) File() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
// An invalid file keeps the previous configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		cm.logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSolr:
		if c.Solr.Base == "" {
			return errors.New("solr.base is required for the solr backend")
		}
	case BackendHOCR:
		if c.HocrDir == "" {
			return errors.New("hocr_dir is required for the hocr backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendSolr, BackendHOCR)
	}
	if c.SnippetScaleFactor <= 0 {
		return fmt.Errorf("snippet_scale_factor must be positive, got %v", c.SnippetScaleFactor)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a log_level value to a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

// Level returns the configured log level, Info when unset or invalid
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ManifestBase returns the base URL of IIIF Presentation resources
func (c *Config) ManifestBase() string {
	return strings.TrimRight(c.ServerURL, "/") + "/iiif/presentation"
}

// ProjectorConfig returns the overlay settings
func (c *Config) ProjectorConfig() overlay.Config {
	return overlay.Config{SnippetScaleFactor: c.SnippetScaleFactor}
}

// SolrClientConfig returns the settings of the Solr client
func (c *Config) SolrClientConfig(logger *slog.Logger) search.ClientConfig {
	cfg := search.DefaultClientConfig()
	cfg.BaseURL = c.Solr.Base
	cfg.Core = c.Solr.Core
	cfg.Timeout = c.Solr.Timeout
	cfg.Attempts = c.Solr.Attempts
	cfg.RetryDelay = c.Solr.RetryDelay
	cfg.Logger = logger
	return cfg
}

// Addr returns the listen address of the server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# ocrlens configuration
# Every key can be overridden from the environment with the CFG_ prefix,
# nested keys joined by underscores: CFG_IMAGE_API_BASE, CFG_SOLR_BASE

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
