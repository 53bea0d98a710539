package telegram

import (
	"context"

	"github.com/sandeepkv93/remindme/internal/chat"
	"github.com/sandeepkv93/remindme/internal/model"
	"github.com/sandeepkv93/remindme/internal/scheduler"
)

// Fire delivers a reminder to its owner's private chat. It matches
// scheduler.FireFunc.
func (b *Bot) Fire(_ context.Context, ev scheduler.ReminderEvent) error {
	return b.send(ev.Owner, chat.ReminderReply(ev))
}

// Digest delivers one owner's morning digest. It matches
// scheduler.DigestFunc.
func (b *Bot) Digest(_ context.Context, owner int64, tasks []model.Task) error {
	return b.send(owner, b.conv.DigestReply(tasks))
}
