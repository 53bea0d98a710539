package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/remindme/internal/model"
)

var (
	ErrNoDeadline         = errors.New("scheduler: task has no deadline")
	ErrInvalidSnooze      = errors.New("scheduler: snooze minutes must be positive")
	ErrCallbackRegistered = errors.New("scheduler: fire callback already registered")
)

// offsetFloor is how far out a "before" reminder is pushed when its natural
// fire time has already passed, so it lands after the acknowledgement message.
const offsetFloor = 5 * time.Second

// TaskStore is the part of the task store the scheduler reads and writes.
type TaskStore interface {
	GetTask(ctx context.Context, owner, id int64) (model.Task, error)
	ListActive(ctx context.Context, owner int64) ([]model.Task, error)
	ListOwnersWithActiveTasks(ctx context.Context) ([]int64, error)
	UpdateDueAt(ctx context.Context, owner, id int64, dueAt *time.Time) error
}

// FireFunc delivers a matured reminder. It runs on its own goroutine.
type FireFunc func(ctx context.Context, ev ReminderEvent) error

// DigestFunc delivers one owner's digest of active tasks.
type DigestFunc func(ctx context.Context, owner int64, tasks []model.Task) error

type Stats struct {
	Armed         uint64
	Fired         uint64
	Superseded    uint64
	FireFailures  uint64
	DigestsSent   uint64
	DigestsFailed uint64
	Cancelled     uint64
}

type DigestReport struct {
	Recipients int
	Delivered  int
	Failed     int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithBufferSize(n int) Option {
	return func(s *Service) {
		s.bufferSize = n
	}
}

// WithSupersede makes a fire no-op when a newer timer has been armed for the
// same task since it was scheduled.
func WithSupersede(enabled bool) Option {
	return func(s *Service) {
		s.supersede = enabled
	}
}

// WithDigest installs the standing daily digest trigger. fn may be nil when
// the delivery callback is registered later with OnDigest.
func WithDigest(at model.DailyAt, fn DigestFunc) Option {
	return func(s *Service) {
		s.digestAt = &at
		s.digest = fn
	}
}

// Service owns every pending reminder timer and the daily digest trigger.
type Service struct {
	store      TaskStore
	engine     *Engine
	logger     *slog.Logger
	now        func() time.Time
	bufferSize int
	supersede  bool

	digestAt *model.DailyAt
	digest   DigestFunc

	mu          sync.Mutex
	onFire      FireFunc
	generations map[int64]uint64
	cancelledAt map[int64]uint64

	ctx          context.Context
	cancel       context.CancelFunc
	dispatchDone chan struct{}
	inflight     sync.WaitGroup
	startOnce    sync.Once
	stopOnce     sync.Once

	armed         atomic.Uint64
	fired         atomic.Uint64
	superseded    atomic.Uint64
	cancelled     atomic.Uint64
	fireFailures  atomic.Uint64
	digestsSent   atomic.Uint64
	digestsFailed atomic.Uint64
}

func NewService(store TaskStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      slog.Default(),
		now:         time.Now,
		bufferSize:  64,
		generations: make(map[int64]uint64),
		cancelledAt: make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = NewEngine(s.bufferSize)
	return s
}

// OnDigest registers the digest delivery callback when WithDigest was given
// none. It can be set only once.
func (s *Service) OnDigest(fn DigestFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.digest != nil {
		return ErrCallbackRegistered
	}
	s.digest = fn
	return nil
}

// OnFire registers the reminder delivery callback. It can be set only once.
func (s *Service) OnFire(fn FireFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onFire != nil {
		return ErrCallbackRegistered
	}
	s.onFire = fn
	return nil
}

// Start runs the timer loop and arms the first digest. Timers armed before
// Start stay queued and fire once it runs.
func (s *Service) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
		s.dispatchDone = make(chan struct{})
		s.engine.Start()
		go s.dispatch()
		if s.digestAt != nil {
			err = s.armDigest(s.now())
		}
	})
	return err
}

// Stop halts the timer loop and waits for in-flight deliveries, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.engine.Stop()
		if s.dispatchDone == nil {
			return
		}
		<-s.dispatchDone

		done := make(chan struct{})
		go func() {
			s.inflight.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		s.cancel()
	})
	return err
}

// Schedule arms a one-shot reminder for the task. A fireAt in the past fires
// immediately.
func (s *Service) Schedule(taskID, owner int64, fireAt time.Time, text string) (ReminderEvent, error) {
	s.mu.Lock()
	s.generations[taskID]++
	gen := s.generations[taskID]
	s.mu.Unlock()

	ev, err := s.engine.Schedule(ReminderEvent{
		Kind:       KindReminder,
		TaskID:     taskID,
		Owner:      owner,
		Text:       text,
		TriggerAt:  fireAt,
		Generation: gen,
	})
	if err != nil {
		return ReminderEvent{}, fmt.Errorf("schedule task %d: %w", taskID, err)
	}
	s.armed.Add(1)
	s.logger.Debug("reminder armed", "id", ev.ID, "task_id", taskID, "owner", owner, "fire_at", fireAt)
	return ev, nil
}

// ScheduleAtOffset arms a reminder relative to the task's deadline. Offset
// modes never fire in the past: a passed fire time is floored to a few
// seconds from now. Exact mode fires at the deadline even if it has passed.
func (s *Service) ScheduleAtOffset(ctx context.Context, owner, taskID int64, mode model.ReminderMode) (time.Time, error) {
	if !mode.IsValid() {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidReminderMode, mode)
	}
	task, err := s.store.GetTask(ctx, owner, taskID)
	if err != nil {
		return time.Time{}, fmt.Errorf("load task %d: %w", taskID, err)
	}
	if task.DueAt == nil {
		return time.Time{}, ErrNoDeadline
	}

	fireAt := task.DueAt.Add(-mode.Offset())
	if mode != model.ReminderModeExact {
		now := s.now()
		if !fireAt.After(now) {
			fireAt = now.Add(offsetFloor)
		}
	}
	if _, err := s.Schedule(task.ID, owner, fireAt, task.Text); err != nil {
		return time.Time{}, err
	}
	return fireAt, nil
}

// Snooze moves the task's deadline to now+minutes and arms a fresh timer for
// it. Timers armed earlier for the task are left alone.
func (s *Service) Snooze(ctx context.Context, owner, taskID int64, minutes int) (time.Time, error) {
	if minutes <= 0 {
		return time.Time{}, ErrInvalidSnooze
	}
	task, err := s.store.GetTask(ctx, owner, taskID)
	if err != nil {
		return time.Time{}, fmt.Errorf("load task %d: %w", taskID, err)
	}
	due := s.now().Add(time.Duration(minutes) * time.Minute)
	if err := s.store.UpdateDueAt(ctx, owner, taskID, &due); err != nil {
		return time.Time{}, fmt.Errorf("update due time of task %d: %w", taskID, err)
	}
	if _, err := s.Schedule(taskID, owner, due, task.Text); err != nil {
		return time.Time{}, err
	}
	return due, nil
}

// Cancel drops every queued timer for a task and invalidates any that have
// already been handed off for delivery.
func (s *Service) Cancel(owner, taskID int64) int {
	s.mu.Lock()
	s.generations[taskID]++
	s.cancelledAt[taskID] = s.generations[taskID]
	s.mu.Unlock()
	removed := s.engine.CancelTask(owner, taskID)
	if removed > 0 {
		s.logger.Debug("reminders cancelled", "task_id", taskID, "owner", owner, "count", removed)
	}
	return removed
}

// RestoreAll re-arms timers for active tasks whose deadline is still ahead.
// Deadlines that passed while the process was down are not backfilled.
func (s *Service) RestoreAll(ctx context.Context) (int, error) {
	owners, err := s.store.ListOwnersWithActiveTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list owners: %w", err)
	}
	now := s.now()
	restored := 0
	for _, owner := range owners {
		tasks, err := s.store.ListActive(ctx, owner)
		if err != nil {
			return restored, fmt.Errorf("list active tasks of %d: %w", owner, err)
		}
		for _, task := range tasks {
			if task.DueAt == nil || !task.DueAt.After(now) {
				continue
			}
			if _, err := s.Schedule(task.ID, owner, *task.DueAt, task.Text); err != nil {
				return restored, err
			}
			restored++
		}
	}
	s.logger.Info("reminders restored", "count", restored, "owners", len(owners))
	return restored, nil
}

// RunDigest sends every owner with active tasks their digest. A failure for
// one owner is logged and counted; the rest still receive theirs.
func (s *Service) RunDigest(ctx context.Context) (DigestReport, error) {
	s.mu.Lock()
	deliver := s.digest
	s.mu.Unlock()
	if deliver == nil {
		return DigestReport{}, nil
	}
	owners, err := s.store.ListOwnersWithActiveTasks(ctx)
	if err != nil {
		return DigestReport{}, fmt.Errorf("list owners: %w", err)
	}
	report := DigestReport{Recipients: len(owners)}
	for _, owner := range owners {
		tasks, err := s.store.ListActive(ctx, owner)
		if err == nil {
			err = deliver(ctx, owner, tasks)
		}
		if err != nil {
			report.Failed++
			s.digestsFailed.Add(1)
			s.logger.Warn("digest delivery failed", "owner", owner, "error", err)
			continue
		}
		report.Delivered++
		s.digestsSent.Add(1)
	}
	s.logger.Info("digest sent", "recipients", report.Recipients, "delivered", report.Delivered, "failed", report.Failed)
	return report, nil
}

// Pending lists queued timers in fire order.
func (s *Service) Pending() []ReminderEvent {
	return s.engine.Pending()
}

func (s *Service) Stats() Stats {
	return Stats{
		Armed:         s.armed.Load(),
		Fired:         s.fired.Load(),
		Superseded:    s.superseded.Load(),
		FireFailures:  s.fireFailures.Load(),
		DigestsSent:   s.digestsSent.Load(),
		DigestsFailed: s.digestsFailed.Load(),
		Cancelled:     s.cancelled.Load(),
	}
}

func (s *Service) dispatch() {
	defer close(s.dispatchDone)
	for ev := range s.engine.C() {
		switch ev.Kind {
		case KindDigest:
			s.goInflight(func() {
				if _, err := s.RunDigest(s.ctx); err != nil {
					s.logger.Error("digest run failed", "error", err)
				}
			})
			from := ev.TriggerAt
			if now := s.now(); now.After(from) {
				from = now
			}
			if err := s.armDigest(from); err != nil && !errors.Is(err, ErrEngineStopped) {
				s.logger.Error("digest rearm failed", "error", err)
			}
		default:
			switch s.staleness(ev) {
			case staleCancelled:
				s.cancelled.Add(1)
				s.logger.Debug("cancelled reminder skipped", "id", ev.ID, "task_id", ev.TaskID)
				continue
			case staleSuperseded:
				s.superseded.Add(1)
				s.logger.Debug("superseded reminder skipped", "id", ev.ID, "task_id", ev.TaskID)
				continue
			}
			s.goInflight(func() { s.fire(ev) })
		}
	}
}

func (s *Service) goInflight(fn func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn()
	}()
}

func (s *Service) fire(ev ReminderEvent) {
	s.mu.Lock()
	fn := s.onFire
	s.mu.Unlock()
	if fn == nil {
		s.logger.Warn("reminder fired without a callback", "id", ev.ID, "task_id", ev.TaskID)
		return
	}
	s.fired.Add(1)
	if err := fn(s.ctx, ev); err != nil {
		s.fireFailures.Add(1)
		s.logger.Warn("reminder delivery failed", "id", ev.ID, "task_id", ev.TaskID, "owner", ev.Owner, "error", err)
		return
	}
	s.logger.Info("reminder fired", "id", ev.ID, "task_id", ev.TaskID, "owner", ev.Owner)
}

type stale int

const (
	staleNone stale = iota
	staleCancelled
	staleSuperseded
)

// staleness reports whether a matured reminder should be skipped. Timers
// armed before a Cancel are always skipped; timers replaced by a newer one
// are skipped only with WithSupersede.
func (s *Service) staleness(ev ReminderEvent) stale {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Generation <= s.cancelledAt[ev.TaskID] {
		return staleCancelled
	}
	if s.supersede && s.generations[ev.TaskID] != ev.Generation {
		return staleSuperseded
	}
	return staleNone
}

func (s *Service) armDigest(from time.Time) error {
	next := s.digestAt.NextAfter(from)
	if _, err := s.engine.Schedule(ReminderEvent{Kind: KindDigest, TriggerAt: next}); err != nil {
		return err
	}
	s.logger.Info("digest armed", "at", next)
	return nil
}
