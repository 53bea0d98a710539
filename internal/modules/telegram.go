package modules

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-monolith/mono"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sandeepkv93/remindme/internal/telegram"
)

const pollTimeoutSeconds = 60

// UpdateSource is the long-polling half of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type TelegramModule struct {
	source UpdateSource
	bot    *telegram.Bot
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

var _ mono.HealthCheckableModule = (*TelegramModule)(nil)

func NewTelegramModule(source UpdateSource, bot *telegram.Bot, logger *slog.Logger) *TelegramModule {
	return &TelegramModule{source: source, bot: bot, logger: logger}
}

func (m *TelegramModule) Name() string {
	return "telegram"
}

func (m *TelegramModule) Start(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := m.source.GetUpdatesChan(cfg)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		if err := m.bot.Run(runCtx, updates); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("telegram update loop stopped", "error", err)
		}
	}()
	m.logger.Info("telegram polling started")
	return nil
}

func (m *TelegramModule) Stop(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}
	m.source.StopReceivingUpdates()
	m.cancel()
	select {
	case <-m.done:
		m.logger.Info("telegram polling stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *TelegramModule) Health(_ context.Context) mono.HealthStatus {
	if m.done == nil {
		return mono.HealthStatus{Healthy: false, Message: "polling not started"}
	}
	select {
	case <-m.done:
		return mono.HealthStatus{Healthy: false, Message: "update loop stopped"}
	default:
		return mono.HealthStatus{Healthy: true, Message: "operational"}
	}
}
