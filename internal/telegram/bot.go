// Package telegram runs the chat over the Telegram Bot API. Owners are
// Telegram user ids; replies go to the chat the update came from.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sandeepkv93/remindme/internal/chat"
)

// API is the part of *tgbotapi.BotAPI the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Option func(*Bot)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

type Bot struct {
	api    API
	conv   *chat.Conversation
	logger *slog.Logger
}

func New(api API, conv *chat.Conversation, opts ...Option) *Bot {
	b := &Bot{api: api, conv: conv, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run handles updates one at a time until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil || m.Chat == nil {
		return
	}
	var reply chat.Reply
	if m.IsCommand() && m.Command() == "start" {
		reply = b.conv.Start(m.From.FirstName)
	} else {
		reply = b.conv.HandleText(ctx, m.From.ID, m.Text)
	}
	if reply.Empty() {
		return
	}
	if err := b.send(m.Chat.ID, reply); err != nil {
		b.logger.Error("send reply failed", "chat_id", m.Chat.ID, "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", "callback_id", q.ID, "error", err)
	}
	if q.From == nil {
		return
	}
	reply, ok := b.conv.HandleToken(ctx, q.From.ID, q.Data)
	if !ok || reply.Empty() {
		return
	}

	if q.Message == nil || q.Message.Chat == nil {
		if err := b.send(q.From.ID, reply); err != nil {
			b.logger.Error("send reply failed", "chat_id", q.From.ID, "error", err)
		}
		return
	}
	chatID := q.Message.Chat.ID
	if !reply.Replace {
		if err := b.send(chatID, reply); err != nil {
			b.logger.Error("send reply failed", "chat_id", chatID, "error", err)
		}
		return
	}
	var edit tgbotapi.EditMessageTextConfig
	if len(reply.Choices) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, q.Message.MessageID, reply.Text, InlineKeyboard(reply.Choices))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, q.Message.MessageID, reply.Text)
	}
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("edit message failed", "chat_id", chatID, "message_id", q.Message.MessageID, "error", err)
	}
}

func (b *Bot) send(chatID int64, reply chat.Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch {
	case len(reply.Choices) > 0:
		msg.ReplyMarkup = InlineKeyboard(reply.Choices)
	case reply.Menu:
		msg.ReplyMarkup = MainKeyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
