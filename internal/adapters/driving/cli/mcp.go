package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/agenda/internal/adapters/driving/mcp"
	"github.com/custodia-labs/agenda/internal/logger"
)

var (
	mcpPort  int
	mcpHost  string
	mcpWatch bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the event assistant to MCP clients",
	Long: `Runs an MCP server offering the 'ask' and 'rebuild' tools and the
agenda://context/last and agenda://health resources.

JSON-RPC goes over stdin/stdout unless --port is given, in which case the
streamable HTTP transport listens on --host:--port.

Desktop assistant entry:
  "agenda": {"command": "/path/to/agenda", "args": ["mcp", "serve"]}

Inspector or remote use:
  agenda mcp serve --port 8080 --watch`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve over HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface for --port")
	mcpServeCmd.Flags().BoolVar(&mcpWatch, "watch", false, "reload the index when ingestion writes a new snapshot")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid --port %d", mcpPort)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, _, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if err := loadIndex(ctx, rt); err != nil {
		logger.Warn("Starting without an index: %v", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{Ask: rt.AskService()})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if mcpPort > 0 {
		addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
		cmd.PrintErrf("MCP server listening on http://%s\n", addr)
		g.Go(func() error { return server.RunHTTP(gctx, addr) })
	} else {
		g.Go(func() error { return server.Run(gctx) })
	}
	if mcpWatch {
		g.Go(func() error { return rt.WatchSnapshots(gctx) })
	}
	return g.Wait()
}
