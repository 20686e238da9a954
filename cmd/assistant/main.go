// Command assistant is a terminal chat assistant with personas, streamed
// replies and optional spoken output and voice input.
//
// Usage:
//
//	DEEPSEEK_API_KEY=sk-... assistant [flags]
//	ANTHROPIC_API_KEY=... assistant -provider anthropic
//	assistant -provider lorem
//
// Flags:
//
//	-config string    Path to a YAML or TOML config file (default: ~/.virtual-ai-assistant/config.yaml)
//	-provider string  Provider: deepseek, anthropic or lorem
//	-model string     Model ID
//	-store string     Conversation store: json or sqlite
//	-mute             Start with spoken replies off
//
// Environment variables are read from a .env file in the working directory
// when present. GEMINI_API_KEY enables speech.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "assistant: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	opts, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts, os.LookupEnv)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}
