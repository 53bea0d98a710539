// Package bootstrap assembles the task core from configuration. Both the bot
// and the console binary start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sandeepkv93/remindme/internal/chat"
	"github.com/sandeepkv93/remindme/internal/config"
	"github.com/sandeepkv93/remindme/internal/lifecycle"
	"github.com/sandeepkv93/remindme/internal/scheduler"
	"github.com/sandeepkv93/remindme/internal/session"
	"github.com/sandeepkv93/remindme/internal/storage"
	"github.com/sandeepkv93/remindme/internal/timeparse"
)

// Core is the wired task core. Delivery callbacks are registered on
// Reminders by the caller before it is started.
type Core struct {
	Store     storage.Repository
	Sessions  session.Store
	Reminders *scheduler.Service
	Tasks     *lifecycle.Service
	Chat      *chat.Conversation

	closers []func() error
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Core, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	digestAt, err := cfg.Digest(loc)
	if err != nil {
		return nil, fmt.Errorf("digest time: %w", err)
	}

	c := &Core{}
	c.Store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.Store.Close)

	c.Sessions, err = openSessions(ctx, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if rs, ok := c.Sessions.(*session.RedisStore); ok {
		c.closers = append(c.closers, rs.Close)
	}

	c.Reminders = scheduler.NewService(c.Store,
		scheduler.WithLogger(logger),
		scheduler.WithBufferSize(cfg.SchedulerBuffer),
		scheduler.WithSupersede(cfg.SupersedeTimers),
		scheduler.WithDigest(digestAt, nil),
	)
	c.Tasks = lifecycle.NewService(c.Store, c.Reminders, timeparse.New(loc), lifecycle.WithLogger(logger))
	c.Chat = chat.New(c.Tasks, c.Sessions, chat.WithLogger(logger))

	logger.Info("core ready",
		"store", storeKind(cfg),
		"sessions", sessionKind(cfg),
		"timezone", loc.String(),
		"digest", cfg.DigestTime,
		"supersede_timers", cfg.SupersedeTimers,
	)
	return c, nil
}

// Close releases the store and session backends. The reminder service is
// stopped by its owner.
func (c *Core) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg config.Config) (storage.Repository, error) {
	if cfg.UsePostgres() {
		repo, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return repo, nil
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", cfg.DBPath, err)
	}
	return repo, nil
}

func openSessions(ctx context.Context, cfg config.Config) (session.Store, error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(cfg.SessionTTL), nil
	}
	rs, err := session.OpenRedis(ctx, cfg.RedisAddr, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("open redis sessions: %w", err)
	}
	return rs, nil
}

func storeKind(cfg config.Config) string {
	if cfg.UsePostgres() {
		return "postgres"
	}
	return "sqlite"
}

func sessionKind(cfg config.Config) string {
	if cfg.RedisAddr == "" {
		return "memory"
	}
	return "redis"
}
