package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/fixedgearperm/market-bot/internal/app/config"
	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

// ModerationNotifier pings the moderator mailbox when a new submission lands
// in the queue. The Telegram moderation chat is the primary surface; the
// email is a backstop for moderators who are not watching the chat.
type ModerationNotifier struct {
	sender     EmailSender
	recipients []string
}

func NewModerationNotifier(sender EmailSender, cfg config.SMTPConfig) *ModerationNotifier {
	return &ModerationNotifier{
		sender:     sender,
		recipients: cfg.ModeratorEmails,
	}
}

func (n *ModerationNotifier) NotifySubmission(ctx context.Context, moderationID string, fields entity.ListingFields) error {
	if len(n.recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Новое объявление на модерации: %s", fields.Title)
	var b strings.Builder
	fmt.Fprintf(&b, "Объявление %s ожидает решения.\n\n", moderationID)
	fmt.Fprintf(&b, "Название: %s\n", fields.Title)
	fmt.Fprintf(&b, "Цена: %s\n", fields.Price)
	fmt.Fprintf(&b, "Контакт: %s\n", fields.ContactDisplay)

	return n.sender.Send(ctx, n.recipients, subject, "", b.String())
}
