package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/report"
)

var (
	reportFile       string
	reportOverwrite  bool
	reportCropWidth  int
	reportImageWidth float64
	reportDebug      bool
	reportTimeout    time.Duration
)

var reportCmd = &cobra.Command{
	Use:   "report QUERY...",
	Short: "Render search results as a PDF",
	Long: `Run a query and render the results as a PDF: one section per document
with its highlighted fields and every snippet region as a cropped page image.
Highlights are drawn in a separate, toggleable layer.

Examples:
  ocrlens report luxemburg -f luxemburg.pdf
  ocrlens report "new york" -f ny.pdf --crop-width 600 --overwrite
  ocrlens report landes -f landes.pdf --debug`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFile == "" {
			return fmt.Errorf("an output file is required (-f)")
		}
		if _, err := os.Stat(reportFile); err == nil && !reportOverwrite {
			return fmt.Errorf("output file %s already exists, use --overwrite to replace it", reportFile)
		}

		q := strings.Join(args, " ")
		page, err := runSearch(cmd, q, reportCropWidth)
		if err != nil {
			return err
		}

		cfg := report.DefaultConfig()
		cfg.Title = fmt.Sprintf("%s: %s", cfgMgr.Get().LibraryName, q)
		cfg.Debug = reportDebug
		cfg.Logger = logger
		if reportImageWidth > 0 {
			cfg.ImageWidth = reportImageWidth
		}

		data, err := report.NewWriter(cfg, report.NewHTTPFetcher(reportTimeout)).Write(cmd.Context(), page)
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("report written", "file", reportFile, "documents", len(page.Documents), "bytes", len(data))
		return nil
	},
}

func init() {
	addSearchFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportFile, "file", "f", "", "output PDF path")
	reportCmd.Flags().BoolVar(&reportOverwrite, "overwrite", false, "overwrite the output file if it exists")
	reportCmd.Flags().IntVar(&reportCropWidth, "crop-width", 0, "width hint for fetched region images in pixels")
	reportCmd.Flags().Float64Var(&reportImageWidth, "image-width", 0, "width of region images in the PDF in points")
	reportCmd.Flags().BoolVar(&reportDebug, "debug", false, "outline regions and highlight boxes")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 30*time.Second, "timeout per image request")

	rootCmd.AddCommand(reportCmd)
}
