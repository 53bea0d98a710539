package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sandeepkv93/remindme/internal/commands"
	"github.com/sandeepkv93/remindme/internal/views"
)

// MainKeyboard is the persistent reply keyboard under the input field.
func MainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(views.MainMenu))
	for _, labels := range views.MainMenu {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// InlineKeyboard maps choices to buttons whose callback data is the encoded
// command token.
func InlineKeyboard(choices [][]commands.Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, cs := range choices {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(cs))
		for _, c := range cs {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Token()))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
