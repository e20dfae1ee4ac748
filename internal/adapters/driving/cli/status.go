package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/logger"
)

var statusHistory int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the index state",
	Long:  `Loads the persisted index and lists recent ingestion builds.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusHistory, "history", "n", 5, "number of past builds to list")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, _, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	ask := rt.AskService()
	if _, err := ask.Rebuild(ctx); err != nil && !errors.Is(err, domain.ErrIndexUnavailable) {
		logger.Warn("Loading index: %v", err)
	}

	health := ask.Health(ctx)
	cmd.Println("[Index]")
	if health.Ready {
		cmd.Printf("  Build ID: %s\n", health.Snapshot.BuildID)
		cmd.Printf("  Chunks: %d\n", health.Snapshot.Count)
		cmd.Printf("  Dimensions: %d\n", health.Snapshot.Dimensions)
		cmd.Printf("  Built: %s\n", health.Snapshot.BuiltAt.Local().Format(time.DateTime))
	} else {
		cmd.Println("  No index loaded. Run 'agenda ingest' to build one.")
	}
	cmd.Printf("  Embedding model: %s\n", health.EmbeddingModel)
	cmd.Printf("  LLM model: %s\n", health.LLMModel)

	if statusHistory <= 0 {
		return nil
	}
	builds, err := rt.History(ctx, statusHistory)
	if err != nil {
		return fmt.Errorf("failed to list builds: %w", err)
	}
	cmd.Println()
	cmd.Println("[Builds]")
	if len(builds) == 0 {
		cmd.Println("  (none)")
		return nil
	}
	for _, b := range builds {
		cmd.Printf("  %s  %s  %d chunks\n", b.BuiltAt.Local().Format(time.DateTime), b.BuildID, b.Count)
	}
	return nil
}
