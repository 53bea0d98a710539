package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-monolith/mono"

	"github.com/sandeepkv93/remindme/internal/scheduler"
)

// SchedulerModule runs the reminder service and re-arms stored deadlines on
// start. The delivery callback must be registered before the module starts.
type SchedulerModule struct {
	svc     *scheduler.Service
	logger  *slog.Logger
	started bool
}

var _ mono.HealthCheckableModule = (*SchedulerModule)(nil)

func NewSchedulerModule(svc *scheduler.Service, logger *slog.Logger) *SchedulerModule {
	return &SchedulerModule{svc: svc, logger: logger}
}

func (m *SchedulerModule) Name() string {
	return "scheduler"
}

func (m *SchedulerModule) Start(ctx context.Context) error {
	if err := m.svc.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	m.started = true
	if _, err := m.svc.RestoreAll(ctx); err != nil {
		return fmt.Errorf("restore reminders: %w", err)
	}
	m.logger.Debug("scheduler module started")
	return nil
}

func (m *SchedulerModule) Stop(ctx context.Context) error {
	if err := m.svc.Stop(ctx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

func (m *SchedulerModule) Health(_ context.Context) mono.HealthStatus {
	if !m.started {
		return mono.HealthStatus{Healthy: false, Message: "scheduler not started"}
	}
	stats := m.svc.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"pending":        len(m.svc.Pending()),
			"armed":          stats.Armed,
			"fired":          stats.Fired,
			"fire_failures":  stats.FireFailures,
			"digests_sent":   stats.DigestsSent,
			"digests_failed": stats.DigestsFailed,
			"cancelled":      stats.Cancelled,
		},
	}
}
