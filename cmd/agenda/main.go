// Command agenda answers questions about public events in Lyon.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/agenda/internal/adapters/driven/config/file"
	"github.com/custodia-labs/agenda/internal/adapters/driving/cli"
	"github.com/custodia-labs/agenda/internal/core/services"
	"github.com/custodia-labs/agenda/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync()

	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open settings: %v\n", err)
		return 1
	}

	cli.SetVersion(version)
	cli.SetSettingsService(services.NewSettingsService(configStore))

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
