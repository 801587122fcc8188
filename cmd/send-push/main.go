// Command send-push sends an ad-hoc push notification to every
// registered token. Useful for testing the gateway wiring without
// creating an expense.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"splitter/internal/config"
	"splitter/internal/push"
	"splitter/internal/storage"
	"splitter/internal/storage/memory"
	"splitter/internal/storage/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: send-push 'Your message here'")
		os.Exit(2)
	}
	message := os.Args[1]

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.DataBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot open store:", err)
			os.Exit(1)
		}
		store = s
	default:
		store = memory.New()
	}
	defer store.Close()

	ctx := context.Background()

	tokens, err := store.ListTokens(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot list tokens:", err)
		os.Exit(1)
	}
	if len(tokens) == 0 {
		fmt.Println("No tokens registered. Register some via /register-token first.")
		return
	}

	client := push.NewClient(cfg.PushGatewayURL, cfg.PushTimeout)
	receipt, err := client.Dispatch(ctx, tokens, cfg.PushTitle, message)
	if err != nil {
		fmt.Fprintln(os.Stderr, "push failed:", err)
		os.Exit(1)
	}

	fmt.Printf("Push sent to %d token(s), response:\n", len(tokens))
	fmt.Println(string(receipt.Body))
}
