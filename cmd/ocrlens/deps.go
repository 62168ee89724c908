package main

import (
	"log/slog"

	"github.com/gardar/ocrlens/pkg/config"
	"github.com/gardar/ocrlens/pkg/iiif"
	"github.com/gardar/ocrlens/pkg/overlay"
	"github.com/gardar/ocrlens/pkg/results"
	"github.com/gardar/ocrlens/pkg/search"
	"github.com/gardar/ocrlens/pkg/server"
)

// newBackend returns the configured searcher. The hOCR backend also serves
// volumes for manifests; with Solr, manifests are built from hocr_dir when
// it is set.
func newBackend(cfg *config.Config, logger *slog.Logger) (search.Searcher, server.VolumeLoader) {
	var source string
	if len(cfg.Sources) == 1 {
		source = cfg.Sources[0]
	}
	dir := search.NewDir(cfg.HocrDir, source, logger)

	if cfg.Backend == config.BackendHOCR {
		return dir, dir
	}
	client := search.NewClient(cfg.SolrClientConfig(logger))
	if cfg.HocrDir == "" {
		return client, nil
	}
	return client, dir
}

func newManifestBuilder(cfg *config.Config) iiif.ManifestBuilder {
	return iiif.ManifestBuilder{BaseURL: cfg.ManifestBase(), ImageAPIBase: cfg.ImageAPIBase}
}

func newAssembler(cfg *config.Config, logger *slog.Logger) *results.Assembler {
	return results.NewAssembler(
		iiif.NewLocator(cfg.ImageAPIBase),
		overlay.NewProjector(cfg.ProjectorConfig()),
		newManifestBuilder(cfg),
		logger,
	)
}
