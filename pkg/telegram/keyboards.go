package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// styleOptions are the commentary styles offered by /style. Callback data
// carries the index, the chosen text lands in the state manager.
var styleOptions = []string{
	"чёрный юмор с матерком",
	"заботливый финансовый консультант",
	"пафосный аристократ",
	"гопник с района",
	"дзен-наставник",
}

// styleKeyboard returns the style selection inline keyboard, one style per row.
func styleKeyboard() models.ReplyMarkup {
	rows := make([][]models.InlineKeyboardButton, len(styleOptions))
	for i, style := range styleOptions {
		rows[i] = []models.InlineKeyboardButton{
			{Text: style, CallbackData: fmt.Sprintf("style:%d", i)},
		}
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// purgeConfirmKeyboard returns the /purge confirmation keyboard (Yes/No).
func purgeConfirmKeyboard() models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Да, удалить всё", CallbackData: "purge:confirm"},
				{Text: "❌ Отмена", CallbackData: "purge:cancel"},
			},
		},
	}
}
