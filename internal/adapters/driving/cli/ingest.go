package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agenda/internal/app"
)

var (
	ingestSource string
	ingestFile   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the event index",
	Long: `Fetches events, normalises them, splits them into chunks, embeds every
chunk and persists a new index snapshot.

Sources:
  opendata  Open Agenda events from the OpenDataSoft API (default)
  jsonl     Pre-normalised events, one JSON object per line (requires --file)

A running 'agenda serve --watch' picks up the new snapshot automatically.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", app.SourceOpenData, "event source (opendata or jsonl)")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "path to a JSON Lines file for the jsonl source")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, _, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	connector, err := rt.Connector(ingestSource, ingestFile)
	if err != nil {
		return err
	}

	cmd.Printf("Ingesting events from %s...\n", ingestSource)
	stats, err := rt.IngestService().Ingest(ctx, connector)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println("Ingestion complete.")
	cmd.Printf("  Events read:    %d\n", stats.EventsRead)
	cmd.Printf("  Events skipped: %d\n", stats.EventsSkipped)
	cmd.Printf("  Chunks:         %d\n", stats.Chunks)
	cmd.Printf("  Dimensions:     %d\n", stats.Snapshot.Dimensions)
	cmd.Printf("  Build ID:       %s\n", stats.Snapshot.BuildID)
	cmd.Printf("  Duration:       %s\n", stats.Duration.Round(time.Millisecond))
	return nil
}
