package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/config"
)

var (
	cfgFile      string
	outputFlag   string
	logLevelFlag string

	outFormat OutputFormat
	cfgMgr    *config.Manager
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ocrlens",
	Short: "Search OCR'd documents and render highlight overlays",
	Long: `ocrlens queries a full-text index of OCR'd documents and lays out the
matches for display: highlighted metadata fields, cropped region images from
an IIIF Image API server and highlight rectangles scaled to the rendered
image size.

Backends:
  - solr: a Solr core with the OCR highlighting plugin
  - hocr: a directory of hOCR files, one volume per file`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseOutputFormat(outputFlag)
		if err != nil {
			return err
		}
		outFormat = format

		// Config load problems are logged at the default level
		bootstrap := slog.New(slog.NewTextHandler(os.Stderr, nil))
		cfgMgr, err = config.NewManager(cfgFile, bootstrap)
		if err != nil {
			return err
		}

		level := cfgMgr.Get().Level()
		if logLevelFlag != "" {
			if level, err = config.ParseLevel(logLevelFlag); err != nil {
				return err
			}
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		logger.Debug("configuration loaded", "file", cfgMgr.File(), "backend", cfgMgr.Get().Backend)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./ocrlens.yaml or ~/.ocrlens/ocrlens.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFlag, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevelFlag, "log-level", "", "log level override: debug, info, warn or error",
	)

	rootCmd.AddCommand(versionCmd)
}
