package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
	"github.com/fixedgearperm/market-bot/internal/domain/flow"
)

const soldMarker = "\n\n🔴 ОБРЕЛО НОВОГО ВЛАДЕЛЬЦА"

const botPlug = "Создать объяву: @fgpmarket_bot"

// userContact resolves the public contact of a Telegram user: an @username
// mention when one exists, a tg://user deep link otherwise. The display form
// flags the missing username so moderators see it.
func userContact(u *tgbotapi.User) entity.Contact {
	if u.UserName != "" {
		mention := "@" + u.UserName
		return entity.Contact{Mention: mention, Display: mention}
	}
	return entity.Contact{
		Mention: fmt.Sprintf("tg://user?id=%d", u.ID),
		Display: fmt.Sprintf("%s (нет @username!)", u.FirstName),
	}
}

func hasUsername(c entity.Contact) bool {
	return strings.HasPrefix(c.Mention, "@")
}

// renderListing builds the listing caption. The moderation variant appends
// the submitter's mention for the moderators; the public variant carries the
// bot plug and the category hashtag instead.
func renderListing(fields entity.ListingFields, forModeration bool) string {
	cat, _ := flow.CategoryByCode(fields.Category)

	var b strings.Builder
	fmt.Fprintf(&b, "🚲 <b>%s</b>\n\n", fields.Title)
	fmt.Fprintf(&b, "📌 %s\n", fields.Description)
	fmt.Fprintf(&b, "💰 Цена: %s\n", fields.Price)
	fmt.Fprintf(&b, "📞 Контакт: %s\n\n", fields.ContactDisplay)

	if forModeration {
		fmt.Fprintf(&b, "От пользователя: %s", fields.ContactMention)
	} else {
		fmt.Fprintf(&b, "%s\n\n%s", botPlug, cat.Tag)
	}
	return b.String()
}

// mediaGroup packs the listing photos into one album with the caption on the
// first photo.
func mediaGroup(chatID int64, photos []string, caption string) tgbotapi.MediaGroupConfig {
	media := make([]interface{}, 0, len(photos))
	for i, fileID := range photos {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(fileID))
		if i == 0 && caption != "" {
			photo.Caption = caption
			photo.ParseMode = tgbotapi.ModeHTML
		}
		media = append(media, photo)
	}
	return tgbotapi.NewMediaGroup(chatID, media)
}
