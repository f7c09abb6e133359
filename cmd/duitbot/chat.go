package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adikusuma/duitbot/internal/analysis"
	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/common"
	"github.com/adikusuma/duitbot/internal/conversation"
	"github.com/adikusuma/duitbot/internal/engine"
	"github.com/adikusuma/duitbot/internal/llm"
	"github.com/adikusuma/duitbot/internal/nlp"
	"github.com/adikusuma/duitbot/internal/rules"
	"github.com/adikusuma/duitbot/internal/service"
	"github.com/adikusuma/duitbot/internal/storage"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant on stdin/stdout",
		Long: `Start an interactive session: each line is one message to the
assistant. Prefix a line with @ to press a suggested button, for
example "@tx_confirm". Ctrl-D ends the session.`,
		RunE: runChat,
	}
	cmd.Flags().String("user", "local", "external user ID for this session")
	cmd.Flags().String("name", "kamu", "display name for this session")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	externalID, _ := cmd.Flags().GetString("user")
	username, _ := cmd.Flags().GetString("name")

	eng, store, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("duitbot siap. Ketik pesan, misalnya: makan 50rb")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var reply engine.Reply
		if action, ok := strings.CutPrefix(line, "@"); ok {
			reply, err = eng.ProcessButton(ctx, externalID, username, action)
		} else {
			reply, err = eng.ProcessText(ctx, externalID, username, line)
		}
		if err != nil {
			var userErr *common.UserError
			if errors.As(err, &userErr) {
				fmt.Println(userErr.UserMessage)
			} else {
				slog.Error("turn failed", "error", err)
				fmt.Println("Waduh, ada masalah di sistem. Coba lagi ya.")
			}
			continue
		}

		fmt.Println(reply.Text)
		for _, button := range reply.Buttons {
			fmt.Printf("  [%s → @%s]\n", button.Label, button.Action)
		}
		fmt.Println()
	}
	return scanner.Err()
}

// buildEngine assembles the full engine from configuration. The oracle
// and OCR collaborators are optional; everything else is required.
func buildEngine() (*engine.Engine, *storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	oracle := buildOracle()

	eng := engine.New(engine.Deps{
		Store:    store,
		Sessions: conversation.NewManager(),
		Intents:  nlp.NewIntentClassifier(oracle, slog.Default()),
		Rules:    rules.NewEngine(nil),
		Budgets:  budget.NewManager(store, slog.Default()),
		Analyzer: analysis.NewAnalyzer(store, slog.Default()),
		Oracle:   oracle,
		Logger:   slog.Default(),
	})
	return eng, store, nil
}

// buildOracle creates the LLM oracle when configured, nil otherwise.
// Missing configuration is not an error: the assistant degrades to its
// local pipeline.
func buildOracle() service.Oracle {
	provider := viper.GetString("llm.provider")
	apiKey := viper.GetString("llm.api_key")
	if provider == "" || apiKey == "" {
		slog.Info("LLM oracle not configured, running local-only")
		return nil
	}

	oracle, err := llm.New(llm.Config{
		Provider:   provider,
		APIKey:     apiKey,
		Model:      viper.GetString("llm.model"),
		BaseURL:    viper.GetString("llm.base_url"),
		MaxRetries: viper.GetInt("llm.max_retries"),
		RateLimit:  viper.GetInt("llm.rate_limit"),
	}, slog.Default())
	if err != nil {
		slog.Warn("Failed to create LLM oracle, running local-only", "error", err)
		return nil
	}
	return oracle
}
