package main

import (
	"github.com/spf13/cobra"

	"github.com/gardar/ocrlens/pkg/config"
	"github.com/gardar/ocrlens/pkg/iiif"
	"github.com/gardar/ocrlens/pkg/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ocrlens server",
	Long: `Start the ocrlens HTTP server.

The server provides:
  - /health                            Basic server health check
  - /search?q=&snippets=&source=&width= Assembled search results
  - /iiif/presentation/{id}/manifest   IIIF manifest of a volume
  - /iiif/presentation/{id}/search?q=  IIIF content search within a volume

Changes to the config file are picked up without a restart for the image
server, scaling and library settings.

Examples:
  ocrlens serve                    # Start on the configured address
  ocrlens serve --port 3000        # Start on custom port
  ocrlens serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := *cfgMgr.Get()
		cfg := &current
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		searcher, volumes := newBackend(cfg, logger)
		srv, err := server.New(server.Config{
			Addr:            cfg.Addr(),
			Searcher:        searcher,
			Volumes:         volumes,
			Assembler:       newAssembler(cfg, logger),
			Annotations:     iiif.SearchBuilder{Manifests: newManifestBuilder(cfg)},
			Sources:         cfg.Sources,
			DefaultSnippets: cfg.DefaultSnippets,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		if cfgMgr.File() != "" {
			cfgMgr.OnChange(func(c *config.Config) {
				srv.SetAssembler(newAssembler(c, logger))
			})
			cfgMgr.WatchConfig()
		}

		// Start server (blocks until shutdown)
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8008, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
