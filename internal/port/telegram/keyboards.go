package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fixedgearperm/market-bot/internal/domain/flow"
)

func startKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚲 Выставить велотовар на обозрение", cbCreateAd),
		),
	)
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(flow.Categories()))
	for _, c := range flow.Categories() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, categoryCallback(c.Code)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func photosDoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏩ Двигаемся дальше", cbPhotosDone),
		),
	)
}

func reviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить мой лот на модерацию", cbSubmit),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Неудачный ракурс. Начнём заново", cbCreateAd),
		),
	)
}

func moderationKeyboard(moderationID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ В витрину магазина", approveCallback(moderationID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Вернуть в коробку", rejectCallback(moderationID)),
		),
	)
}

func soldKeyboard(publicationRef string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔴 Товар обрёл нового владельца", soldCallback(publicationRef)),
		),
	)
}

func createNewAdKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚲 Продать ещё что-нибудь из велозаначки", cbCreateAd),
		),
	)
}

func errorKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ В начало", cbGoToStart),
		),
	)
}
