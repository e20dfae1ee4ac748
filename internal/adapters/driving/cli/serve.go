package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/agenda/internal/adapters/driving/api"
	"github.com/custodia-labs/agenda/internal/logger"
)

var (
	serveAddr    string
	serveWatch   bool
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Starts the HTTP API:

  POST /ask        {"question": "..."} -> {"question", "response", "context"}
  GET  /rebuild    reload the index and metadata from disk
  GET  /health     serving state
  GET  /metadata   context of the last answer

The persisted index is loaded at startup. Without one, /ask answers 503
until 'agenda ingest' has run and /rebuild is called, or until --watch
notices the new snapshot.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the index when ingestion writes a new snapshot")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "allowed CORS origins (default: any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, settings, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if err := loadIndex(ctx, rt); err != nil {
		logger.Warn("Starting without an index: %v", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(rt.AskService(), api.RouterConfig{AllowOrigins: serveOrigins})
	server := api.NewServer(addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	if serveWatch {
		g.Go(func() error {
			return rt.WatchSnapshots(gctx)
		})
	}
	return g.Wait()
}
