package console

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindme/internal/model"
	"github.com/sandeepkv93/remindme/internal/scheduler"
)

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

type DigestDueMsg struct {
	Tasks []model.Task
}

// Inbox carries scheduler deliveries for the console owner into the UI
// loop. Deliveries for any other owner are ignored.
type Inbox struct {
	owner int64
	ch    chan tea.Msg
}

func NewInbox(owner int64, size int) *Inbox {
	if size <= 0 {
		size = 16
	}
	return &Inbox{owner: owner, ch: make(chan tea.Msg, size)}
}

func (i *Inbox) C() <-chan tea.Msg {
	return i.ch
}

// Fire matches scheduler.FireFunc.
func (i *Inbox) Fire(ctx context.Context, ev scheduler.ReminderEvent) error {
	if ev.Owner != i.owner {
		return nil
	}
	return i.push(ctx, ReminderDueMsg{Event: ev})
}

// Digest matches scheduler.DigestFunc.
func (i *Inbox) Digest(ctx context.Context, owner int64, tasks []model.Task) error {
	if owner != i.owner {
		return nil
	}
	return i.push(ctx, DigestDueMsg{Tasks: tasks})
}

func (i *Inbox) push(ctx context.Context, msg tea.Msg) error {
	select {
	case i.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func waitForInboxCmd(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
