package scheduler

import (
	"container/heap"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

type EventKind int

const (
	KindReminder EventKind = iota + 1
	KindDigest
)

func (k EventKind) String() string {
	switch k {
	case KindReminder:
		return "reminder"
	case KindDigest:
		return "digest"
	default:
		return "unknown"
	}
}

// ReminderEvent is one armed timer. Text is the task text at the moment the
// timer was armed and is delivered verbatim even if the task changes later.
type ReminderEvent struct {
	ID         string
	Kind       EventKind
	TaskID     int64
	Owner      int64
	Text       string
	TriggerAt  time.Time
	Generation uint64
}

type queueItem struct {
	event ReminderEvent
	seq   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

// Less falls back to insertion order so events sharing a trigger time fire
// in the order they were armed.
func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i].event.TriggerAt, pq[j].event.TriggerAt
	if a.Equal(b) {
		return pq[i].seq < pq[j].seq
	}
	return a.Before(b)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine keeps armed timers in a min-heap and emits each one on C when it
// matures. A full buffer holds the loop until the consumer catches up, so a
// burst of simultaneous timers is delivered in full.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	seq     uint64
	out     chan ReminderEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		out:    make(chan ReminderEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan ReminderEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

// Stop halts the loop and closes C. Events still queued are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	started := e.started
	e.mu.Unlock()
	if started {
		<-e.doneCh
		return
	}
	close(e.out)
}

// Schedule arms ev and returns it with its assigned ID. A trigger time in the
// past fires on the next loop iteration.
func (e *Engine) Schedule(ev ReminderEvent) (ReminderEvent, error) {
	if ev.TriggerAt.IsZero() {
		return ReminderEvent{}, ErrInvalidTriggerTime
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Kind == 0 {
		ev.Kind = KindReminder
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ReminderEvent{}, ErrEngineStopped
	}

	e.seq++
	heap.Push(&e.queue, queueItem{event: ev, seq: e.seq})
	e.signalWakeup()
	return ev, nil
}

// CancelTask removes every queued reminder for the task and reports how many
// were removed.
func (e *Engine) CancelTask(owner, taskID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.queue[:0]
	removed := 0
	for _, item := range e.queue {
		if item.event.Kind == KindReminder && item.event.TaskID == taskID && item.event.Owner == owner {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0
	}
	e.queue = kept
	heap.Init(&e.queue)
	e.signalWakeup()
	return removed
}

// Pending returns a snapshot of the queued events ordered by trigger time.
func (e *Engine) Pending() []ReminderEvent {
	e.mu.Lock()
	items := make([]queueItem, len(e.queue))
	copy(items, e.queue)
	e.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return priorityQueue(items).Less(i, j)
	})
	out := make([]ReminderEvent, len(items))
	for i, item := range items {
		out[i] = item.event
	}
	return out
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, ev := range e.popDue(time.Now()) {
				select {
				case e.out <- ev:
				case <-e.stopCh:
					return
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (ReminderEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return ReminderEvent{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []ReminderEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ReminderEvent, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].event
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
