package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agenda/internal/adapters/driving/tui"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

var (
	chatSession string
	chatPlain   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about events interactively",
	Long: `Opens an interactive conversation. Follow-up questions share one session,
so "plus de détails" refers to the event found by the previous answer.

Controls:
  Enter       Send the question
  Ctrl+S      Show or hide sources
  Ctrl+N      Start a new session
  PgUp/PgDn   Scroll the transcript
  Esc/Ctrl+C  Quit (or type "quit" / "exit")

Use --plain for a line-based prompt without the full-screen interface.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session ID to resume (default: new session)")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use a line-based prompt instead of the terminal UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, _, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if err := loadIndex(ctx, rt); err != nil {
		return err
	}

	if chatPlain {
		return runPlainChat(cmd, rt.AskService(), chatSession)
	}

	app, err := tui.NewApp(&tui.Ports{Ask: rt.AskService()}, chatSession)
	if err != nil {
		return err
	}
	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	cmd.Println(chat.Farewell)
	return nil
}

// runPlainChat reads questions line by line until quit, exit or end of input.
func runPlainChat(cmd *cobra.Command, ask driving.AskService, sessionID string) error {
	ctx := cmd.Context()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	cmd.Println("Chatbot prêt ! Posez vos questions sur les événements de Lyon.")
	for {
		cmd.Print("\nVous : ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if chat.IsExitWord(line) {
			break
		}
		if line == "" {
			continue
		}

		answer, err := ask.Ask(ctx, domain.Question{Text: line, SessionID: sessionID})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Printf("Erreur : %v\n", err)
			continue
		}
		printSources(cmd, answer.Context)
		cmd.Printf("\nChatbot : %s\n", answer.Response)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	cmd.Println(chat.Farewell)
	return nil
}
