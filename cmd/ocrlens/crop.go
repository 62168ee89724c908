package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/iiif"
	"github.com/gardar/ocrlens/pkg/ocrhl"
)

var cropWidthHint int

// CropResult is the output of the crop command
type CropResult struct {
	ID      string `json:"id" yaml:"id"`
	URL     string `json:"url" yaml:"url"`
	InfoURL string `json:"infoUrl" yaml:"infoUrl"`
}

var cropCmd = &cobra.Command{
	Use:   "crop DOCUMENT PAGE ULX ULY LRX LRY",
	Short: "Print the image crop URL of a region",
	Long: `Print the IIIF Image API identifier and URL that crop a region out of a
page scan. Coordinates are in page pixels and are truncated to integers.

Examples:
  ocrlens crop bookA p1 10.7 5.2 30.9 15.1
  ocrlens crop bookA p1 100 200 600 260 --width 250`,
	Args: cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		var coords [4]float64
		for i := range coords {
			v, err := strconv.ParseFloat(args[2+i], 64)
			if err != nil {
				return fmt.Errorf("invalid coordinate %q: %w", args[2+i], err)
			}
			coords[i] = v
		}
		box := ocrhl.NewBox(coords[0], coords[1], coords[2], coords[3])
		if box.Empty() {
			return fmt.Errorf("region %v has no area", args[2:])
		}

		locator := iiif.NewLocator(cfgMgr.Get().ImageAPIBase)
		return output(CropResult{
			ID:      iiif.CropID(args[0], args[1], box, cropWidthHint),
			URL:     locator.CropURL(args[0], args[1], box, cropWidthHint),
			InfoURL: locator.ImageInfoURL(args[0], args[1]),
		})
	},
}

func init() {
	cropCmd.Flags().IntVar(&cropWidthHint, "width", 0, "width hint in pixels (default full size)")

	rootCmd.AddCommand(cropCmd)
}
