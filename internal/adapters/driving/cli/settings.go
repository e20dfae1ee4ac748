package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/agenda/internal/adapters/driven/ai"
	"github.com/custodia-labs/agenda/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change chunking, retrieval, model and serving settings.

Settings are stored in a TOML file. API keys can also come from the
environment (MISTRAL_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY) or a .env
file, and AGENDA_* variables override any key (AGENDA_LLM_MODEL for
llm.model).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change a setting",
	Long: `Stores a single setting. Run 'agenda settings keys' for the list.

When the value of an API key is omitted it is read from the terminal
without echo.

Examples:
  agenda settings set llm.provider ollama
  agenda settings set chunking.size 800
  agenda settings set llm.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the model providers are reachable",
	Long: `Validates the settings, then connects to the embedding and LLM providers
to confirm they answer.`,
	Args: cobra.NoArgs,
	RunE: runSettingsCheck,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey)
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Session]")
	cmd.Printf("  Backend: %s\n", settings.Session.Backend)
	if settings.Session.Backend == domain.SessionBackendRedis {
		cmd.Printf("  Redis: %s\n", orNotSet(settings.Session.RedisAddr))
		cmd.Printf("  TTL: %s\n", settings.Session.TTL)
	} else {
		cmd.Printf("  Capacity: %d\n", settings.Session.Capacity)
	}
	cmd.Println()

	cmd.Println("[OpenData]")
	cmd.Printf("  Dataset: %s\n", settings.OpenData.Dataset)
	cmd.Printf("  City: %s\n", settings.OpenData.City)
	cmd.Printf("  Lang: %s\n", settings.OpenData.Lang)
	cmd.Printf("  Max records: %d\n", settings.OpenData.MaxRecords)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	cmd.Printf("Data directory: %s\n", orDefault(settings.DataDir, "~/.agenda/data"))
	cmd.Printf("Settings file: %s\n", settingsService.Path())
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'agenda settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !isSecretKey(key) {
			return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidInput, key)
		}
		cmd.Printf("Enter %s: ", key)
		value = readSecret(cmd.InOrStdin())
		cmd.Println()
		if value == "" {
			return fmt.Errorf("%w: empty value for %s", domain.ErrInvalidInput, key)
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if isSecretKey(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	if err := settingsService.Validate(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Checking embedding provider %s (%s)... ", settings.Embedding.Provider, settings.Embedding.Model)
	emb, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		cmd.Println("FAILED")
		return err
	}
	_ = emb.Close()
	cmd.Println("OK")

	cmd.Printf("Checking LLM provider %s (%s)... ", settings.LLM.Provider, settings.LLM.Model)
	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		cmd.Println("FAILED")
		return err
	}
	_ = llm.Close()
	cmd.Println("OK")
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	cmd.Println(settingsService.Path())
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" || provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(baseURL, "(provider default)"))
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orNotSet(s string) string {
	return orDefault(s, "(not set)")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

// readSecret reads a line without echo when r is the terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(r io.Reader) string {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
