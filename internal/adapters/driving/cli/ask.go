package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

var (
	askSession string
	askTopK    int
	askToday   bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about upcoming events",
	Long: `Retrieves the events closest to the question and asks the language model
to answer from them. The events used as context are listed under the answer.

A vague follow-up ("plus de détails", "cet événement") reuses the event
retrieved by the previous question of the same --session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session ID for follow-up questions")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askToday, "today", false, "prefer events taking place today")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, _, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if err := loadIndex(ctx, rt); err != nil {
		return err
	}

	answer, err := rt.AskService().Ask(ctx, domain.Question{
		Text:      strings.Join(args, " "),
		SessionID: askSession,
		TopK:      askTopK,
		TodayOnly: askToday,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Response)
	printSources(cmd, answer.Context)
	return nil
}

// printSources lists the context texts that grounded an answer.
func printSources(cmd *cobra.Command, texts []string) {
	if len(texts) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("--- Sources utilisées ---")
	for _, text := range texts {
		cmd.Printf("- %s\n", domain.Preview(text, domain.SourcePreviewLength))
	}
}
