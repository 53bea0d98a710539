package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sandeepkv93/remindme/internal/bootstrap"
	"github.com/sandeepkv93/remindme/internal/config"
	"github.com/sandeepkv93/remindme/internal/modules"
	"github.com/sandeepkv93/remindme/internal/telegram"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "remindme: %v\n", err)
		os.Exit(1)
	}
	logger := bootstrap.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.RequireBotToken(); err != nil {
		logger.Error("cannot start bot", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	core, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open task core", "error", err)
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		_ = core.Close()
		os.Exit(1)
	}
	logger.Info("authorized on telegram", "account", api.Self.UserName)

	bot := telegram.New(api, core.Chat, telegram.WithLogger(logger))
	if err := core.Reminders.OnFire(bot.Fire); err != nil {
		logger.Error("failed to register reminder delivery", "error", err)
		os.Exit(1)
	}
	if err := core.Reminders.OnDigest(bot.Digest); err != nil {
		logger.Error("failed to register digest delivery", "error", err)
		os.Exit(1)
	}

	monoLevel := mono.LogLevelInfo
	if cfg.FrameworkErrorsOnly() {
		monoLevel = mono.LogLevelError
	}
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(monoLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		logger.Error("failed to create mono application", "error", err)
		os.Exit(1)
	}

	schedulerModule := modules.NewSchedulerModule(core.Reminders, logger)
	telegramModule := modules.NewTelegramModule(api, bot, logger)
	app.Register(schedulerModule)
	app.Register(telegramModule)
	app.Register(modules.NewHealthModule(cfg.Port, logger, schedulerModule, telegramModule))

	if err := app.Start(ctx); err != nil {
		logger.Error("failed to start application", "error", err)
		_ = core.Close()
		os.Exit(1)
	}
	logger.Info("remindme started", "health_addr", cfg.ListenAddr())

	wait := gfshutdown.GracefulShutdown(
		ctx,
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("graceful shutdown initiated")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				return core.Close()
			},
		},
	)

	exitCode := <-wait
	logger.Info("remindme exited", "code", exitCode)
	os.Exit(exitCode)
}
