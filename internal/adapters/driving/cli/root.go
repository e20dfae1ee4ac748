// Package cli provides the cobra commands of the agenda binary.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agenda/internal/app"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
	"github.com/custodia-labs/agenda/internal/logger"
)

// Runtime is the wired application driven by the commands.
type Runtime interface {
	AskService() driving.AskService
	IngestService() driving.IngestService
	Connector(source, path string) (driven.Connector, error)
	WatchSnapshots(ctx context.Context) error
	History(ctx context.Context, limit int) ([]domain.SnapshotInfo, error)
	Close() error
}

// RuntimeFactory builds a Runtime from resolved settings.
type RuntimeFactory func(ctx context.Context, settings *domain.AppSettings) (Runtime, error)

var (
	version         = "dev"
	verbose         bool
	settingsService driving.SettingsService
	openRuntime     RuntimeFactory = newAppRuntime
)

var errSettingsNotConfigured = errors.New("settings service not configured")

var rootCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Ask questions about public events in Lyon",
	Long: `agenda answers natural-language questions about public events using
retrieval-augmented generation over an index built from Open Agenda data.

Build the index with 'agenda ingest', then ask with 'agenda ask', chat
interactively with 'agenda chat', or serve the HTTP API with 'agenda serve'.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by 'agenda version'.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by all commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetRuntimeFactory replaces how commands build the application.
func SetRuntimeFactory(f RuntimeFactory) {
	openRuntime = f
}

func newAppRuntime(ctx context.Context, settings *domain.AppSettings) (Runtime, error) {
	a, err := app.New(ctx, settings)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// loadRuntime resolves settings and builds the runtime for a command.
func loadRuntime(ctx context.Context) (Runtime, *domain.AppSettings, error) {
	if settingsService == nil {
		return nil, nil, errSettingsNotConfigured
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settings: %w", err)
	}
	rt, err := openRuntime(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	return rt, settings, nil
}

// loadIndex brings the persisted snapshot online for one-shot commands.
func loadIndex(ctx context.Context, rt Runtime) error {
	if _, err := rt.AskService().Rebuild(ctx); err != nil {
		return fmt.Errorf("%w (run 'agenda ingest' first)", err)
	}
	return nil
}

func closeRuntime(rt Runtime) {
	if err := rt.Close(); err != nil {
		logger.Warn("Closing runtime: %v", err)
	}
}
