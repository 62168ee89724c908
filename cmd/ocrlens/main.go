// ocrlens searches OCR'd documents and renders highlight overlays for the
// matches: as JSON/YAML view models, IIIF resources over HTTP or a PDF report.
//
// Usage:
//
//	ocrlens [command] [flags]
//
// Commands:
//
//	serve    Start the HTTP server
//	search   Run a query and print the assembled results
//	crop     Print the image crop URL of a region
//	report   Run a query and render the results as PDF
//	config   Show or initialize the configuration
//	version  Print version information
//
// Configuration is read from ./ocrlens.yaml (or --config) and CFG_*
// environment variables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
