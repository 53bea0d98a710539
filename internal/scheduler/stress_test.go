package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/remindme/internal/model"
)

func TestEngineStressConcurrentSchedule(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const perWorker = 200
	total := workers * perWorker

	now := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				delay := time.Duration((w+i)%50+10) * time.Millisecond
				ev := ReminderEvent{
					Owner:     int64(w),
					TaskID:    int64(i),
					Text:      "stress",
					TriggerAt: now.Add(delay),
				}
				if _, err := engine.Schedule(ev); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	deadline := time.After(5 * time.Second)
	var received int64
	for atomic.LoadInt64(&received) < int64(total) {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting events: received=%d total=%d", received, total)
		case <-engine.C():
			atomic.AddInt64(&received, 1)
		}
	}

	if got := int(received); got != total {
		t.Fatalf("unexpected received count: got=%d want=%d", got, total)
	}
}

func TestEngineStressScheduleWithCancel(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const tasks = 100
	at := time.Now().Add(200 * time.Millisecond)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < tasks; i++ {
			if _, err := engine.Schedule(ReminderEvent{Owner: 1, TaskID: int64(i), TriggerAt: at}); err != nil {
				t.Errorf("schedule failed: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < tasks; i++ {
			engine.CancelTask(1, int64(i))
		}
	}()
	wg.Wait()

	// Whatever survived the race must still fire exactly once.
	want := len(engine.Pending())
	deadline := time.After(2 * time.Second)
	got := 0
	for got < want {
		select {
		case <-deadline:
			t.Fatalf("timeout: received=%d want=%d", got, want)
		case <-engine.C():
			got++
		}
	}
	if len(engine.Pending()) != 0 {
		t.Fatalf("expected empty queue, got %d", len(engine.Pending()))
	}
}

func TestServiceBurstLargerThanBufferFiresEveryReminder(t *testing.T) {
	const total = 2000
	svc := NewService(newFakeStore(), WithBufferSize(4), WithDigest(model.DailyAt{Hour: 7, Minute: 30, Location: time.UTC}, nil))

	var fired atomic.Int64
	if err := svc.OnFire(func(context.Context, ReminderEvent) error {
		fired.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	at := time.Now().Add(100 * time.Millisecond)
	for i := 0; i < total; i++ {
		if _, err := svc.Schedule(int64(i+1), 7, at, "burst"); err != nil {
			t.Fatalf("schedule %d: %v", i, err)
		}
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.Stop(context.Background())

	deadline := time.After(5 * time.Second)
	for fired.Load() < total {
		select {
		case <-deadline:
			t.Fatalf("timeout: fired=%d want=%d", fired.Load(), total)
		case <-time.After(10 * time.Millisecond):
		}
	}
	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != total {
		t.Fatalf("expected each reminder to fire once, fired=%d want=%d", got, total)
	}
	pending := svc.Pending()
	if len(pending) != 1 || pending[0].Kind != KindDigest {
		t.Fatalf("expected only the digest trigger to remain, got %d events", len(pending))
	}
}
