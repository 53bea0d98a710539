package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindme/internal/bootstrap"
	"github.com/sandeepkv93/remindme/internal/config"
	"github.com/sandeepkv93/remindme/internal/console"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "remindme-console failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file when one is set.
	var logOut io.Writer = io.Discard
	if cfg.ConsoleLogPath != "" {
		f, err := os.OpenFile(cfg.ConsoleLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open console log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := bootstrap.NewLogger(logOut, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	inbox := console.NewInbox(cfg.ConsoleOwner, cfg.SchedulerBuffer)
	if err := core.Reminders.OnFire(inbox.Fire); err != nil {
		return err
	}
	if err := core.Reminders.OnDigest(inbox.Digest); err != nil {
		return err
	}
	if err := core.Reminders.Start(ctx); err != nil {
		return fmt.Errorf("start reminders: %w", err)
	}
	defer core.Reminders.Stop(context.Background())
	if _, err := core.Reminders.RestoreAll(ctx); err != nil {
		return fmt.Errorf("restore reminders: %w", err)
	}

	program := tea.NewProgram(console.NewModel(ctx, core.Chat, cfg.ConsoleOwner, inbox.C()))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
