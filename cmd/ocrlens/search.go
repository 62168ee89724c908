package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/results"
	"github.com/gardar/ocrlens/pkg/search"
)

var (
	searchSnippets  int
	searchRows      int
	searchSources   []string
	searchWidth     float64
	searchCropWidth int
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Run a query and print the assembled results",
	Long: `Run a query against the configured backend and print one entry per
matching document: highlighted fields, match count and, for every snippet
region, the crop URL, display width and highlight boxes.

With --width the highlight boxes are also projected to screen rectangles for
region images rendered that many pixels wide.

Examples:
  ocrlens search luxemburg
  ocrlens search "new york" --source gbooks --snippets 3
  ocrlens search landes --width 600 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := runSearch(cmd, strings.Join(args, " "), searchCropWidth)
		if err != nil {
			return err
		}
		return output(page)
	},
}

// runSearch queries the backend and assembles the results
func runSearch(cmd *cobra.Command, q string, cropWidth int) (*results.Page, error) {
	cfg := cfgMgr.Get()
	searcher, _ := newBackend(cfg, logger)

	query := search.Query{
		Q:        q,
		Sources:  cfg.Sources,
		Snippets: cfg.DefaultSnippets,
		Rows:     searchRows,
	}
	if cmd.Flags().Changed("snippets") {
		query.Snippets = searchSnippets
	}
	if len(searchSources) > 0 {
		query.Sources = searchSources
	}

	resp, err := searcher.Search(cmd.Context(), query)
	if err != nil {
		return nil, err
	}
	return newAssembler(cfg, logger).Assemble(resp, results.Options{
		Query:       q,
		ScreenWidth: searchWidth,
		CropWidth:   cropWidth,
	}), nil
}

// addSearchFlags registers the flags shared by search and report
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&searchSnippets, "snippets", search.DefaultSnippets, "OCR snippets per document (1-50)")
	cmd.Flags().IntVar(&searchRows, "rows", 0, "maximum number of documents (default 1000)")
	cmd.Flags().StringSliceVar(&searchSources, "source", nil, "restrict to sources (default from config)")
}

func init() {
	addSearchFlags(searchCmd)
	searchCmd.Flags().Float64Var(&searchWidth, "width", 0, "rendered width of region images in pixels")
	searchCmd.Flags().IntVar(&searchCropWidth, "crop-width", 0, "width hint for crop URLs in pixels (default full size)")

	rootCmd.AddCommand(searchCmd)
}
