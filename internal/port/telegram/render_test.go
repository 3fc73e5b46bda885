package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

func testFields() entity.ListingFields {
	return entity.ListingFields{
		Category:       "sell",
		Photos:         []string{"file-1", "file-2"},
		Title:          "Седло Brooks B17",
		Description:    "Состояние отличное",
		Price:          "3 000 ₽",
		ContactMention: "@seller",
		ContactDisplay: "@seller",
	}
}

func TestUserContact_WithUsername(t *testing.T) {
	c := userContact(&tgbotapi.User{ID: 7, UserName: "seller", FirstName: "Вася"})
	assert.Equal(t, "@seller", c.Mention)
	assert.Equal(t, "@seller", c.Display)
	assert.True(t, hasUsername(c))
}

func TestUserContact_WithoutUsername(t *testing.T) {
	c := userContact(&tgbotapi.User{ID: 7, FirstName: "Вася"})
	assert.Equal(t, "tg://user?id=7", c.Mention)
	assert.Equal(t, "Вася (нет @username!)", c.Display)
	assert.False(t, hasUsername(c))
}

func TestRenderListing_PublicVariant(t *testing.T) {
	text := renderListing(testFields(), false)

	assert.Contains(t, text, "🚲 <b>Седло Brooks B17</b>")
	assert.Contains(t, text, "📌 Состояние отличное")
	assert.Contains(t, text, "💰 Цена: 3 000 ₽")
	assert.Contains(t, text, "📞 Контакт: @seller")
	assert.Contains(t, text, botPlug)
	assert.Contains(t, text, "#продажа")
	assert.NotContains(t, text, "От пользователя")
}

func TestRenderListing_ModerationVariant(t *testing.T) {
	text := renderListing(testFields(), true)

	assert.Contains(t, text, "От пользователя: @seller")
	assert.NotContains(t, text, botPlug)
	assert.NotContains(t, text, "#продажа")
}

func TestMediaGroup_CaptionOnFirstPhoto(t *testing.T) {
	cfg := mediaGroup(-100, []string{"file-1", "file-2"}, "caption")

	require.Len(t, cfg.Media, 2)
	first, ok := cfg.Media[0].(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, "caption", first.Caption)
	assert.Equal(t, tgbotapi.ModeHTML, first.ParseMode)

	second, ok := cfg.Media[1].(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Empty(t, second.Caption)
}
