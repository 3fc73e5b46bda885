package telegram

import (
	"fmt"

	"github.com/fixedgearperm/market-bot/internal/domain/flow"
)

const (
	textWelcome = "🎭 <b>Привет!</b>\n\n" +
		"Добро пожаловать в <b>FGP_MIXEDBARAHOLKA</b>!\n\n" +
		"<i>Здесь можно продать вещи и анонсировать события.</i>"

	textAskCategory = "📋 <b>Выбери категорию</b>\n\n" +
		"<i>Выбери подходящую категорию для твоего объявления:</i>"

	textAskTitle = "✏️ <b>Название товара</b>\n\n" +
		"<i>Напиши краткое название (до 50 символов).</i>\n\n" +
		"💡 <u>Например:</u> <code>Седло Brooks B17</code> или <code>Переключатель Shimano XT</code>"

	textAskDescription = "📝 <b>Описание</b>\n\n" +
		"<i>Расскажи о товаре: состояние, особенности, совместимость.</i>\n\n" +
		"💭 <u>Совет:</u> Будь честным - это ценится больше приукрашивания.\n\n" +
		"📏 <code>Максимум 500 символов</code>"

	textAskPrice = "💰 <b>Цена</b>\n\n" +
		"<i>Укажи цену в рублях (только число) или напиши</i> <code>Даром</code>"

	textReview = "👀 <b>Предварительный просмотр</b>\n\n" +
		"<i>Проверь, что всё правильно.</i> Если да - <u>отправляй на модерацию!</u> 🚀"

	textSubmitted = "✅ <b>Отправлено на модерацию!</b>\n\n" +
		"<i>Модераторы проверят твое объявление.</i> ⏰ Обычно это занимает до <code>24 часов</code>.\n\n" +
		"Хочешь создать ещё одно объявление?"

	textEnoughPhotos = "<b>Хватит фото!</b> 📸\n<i>Нажми 'Дальше'.</i>"
	textNeedPhoto    = "⚠️ <b>Нужно хотя бы одно фото!</b>\n<i>Загрузи фото товара.</i>"

	textTitleTooLong       = "❌ <b>Слишком длинно!</b>\n<i>Сократи до 50 символов.</i>"
	textDescriptionTooLong = "❌ <b>Слишком много текста!</b>\n<i>Сократи до 500 символов.</i>"
	textInvalidPrice       = "❌ <b>Неверный формат цены!</b>\n<i>Введи число</i> (<code>5000</code>) <i>или</i> <code>Даром</code>"

	textNoUsername = "⚠️ <b>У тебя нет @username!</b>\n\n" +
		"<i>Без username покупателям будет сложно связаться с тобой.</i>\n\n" +
		"🛠 <u>Решение:</u> создай <code>@username</code> в настройках Telegram или укажи альтернативный способ связи в описании."

	textNewSubmission = "🧠 <b>Новое объявление на модерации</b>"

	textApprovedAuthor = "✅ <b>Объявление одобрено!</b>\n\n" +
		"🎉 <i>Оно опубликовано в канале.</i> Когда продашь - нажми <u>«Продано»</u>"
	textRejectedAuthor = "❌ <b>Объявление отклонено</b>\n\n" +
		"🔄 <i>Создай новое объявление с лучшими фото и описанием.</i>"

	textSoldCongrats = "🎉 <b>Поздравляем с продажей!</b>\n\n" +
		"<i>Объявление помечено как</i> <u>«Продано»</u>."
	textAlreadySold   = "ℹ️ <i>Уже помечено как продано.</i>"
	textSaleNotFound  = "❌ <b>Объявление не найдено или уже продано.</b>"
	textAlreadyActed  = "ℹ️ <i>Решение уже принято другим модератором.</i>"
	textRecordMissing = "Данные объявления не найдены!"
)

// replyText maps a flow reply to its wording. An empty string means nothing
// should be said.
func replyText(r flow.Reply) string {
	switch r.Code {
	case flow.ReplyAskCategory:
		return textAskCategory
	case flow.ReplyAskPhotos:
		return fmt.Sprintf("📸 <b>Загрузи фото</b>\n\nКатегория: <code>%s</code>\n\n"+
			"<i>Присылай фото по одному (до 3-х штук). Хорошие фото = быстрая продажа!</i>", r.Category.Label)
	case flow.ReplyPhotoSaved:
		return fmt.Sprintf("👍 <b>Фото %d/%d</b> сохранено.\n<i>Продолжай или нажми 'Дальше'.</i>", r.PhotoCount, flow.MaxPhotos)
	case flow.ReplyEnoughPhotos:
		return textEnoughPhotos
	case flow.ReplyNeedPhoto:
		return textNeedPhoto
	case flow.ReplyAskTitle:
		return textAskTitle
	case flow.ReplyTitleTooLong:
		return textTitleTooLong
	case flow.ReplyAskDescription:
		return textAskDescription
	case flow.ReplyDescriptionTooLong:
		return textDescriptionTooLong
	case flow.ReplyAskPrice:
		return textAskPrice
	case flow.ReplyInvalidPrice:
		return textInvalidPrice
	case flow.ReplyReview:
		return textReview
	case flow.ReplyGoToStart:
		return textWelcome
	}
	return ""
}
