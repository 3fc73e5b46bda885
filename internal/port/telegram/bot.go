package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fixedgearperm/market-bot/internal/app/config"
	"github.com/fixedgearperm/market-bot/internal/domain/entity"
	"github.com/fixedgearperm/market-bot/internal/domain/flow"
	"github.com/fixedgearperm/market-bot/internal/platform/logger"
	"github.com/fixedgearperm/market-bot/internal/service"
)

// PhotoArchiver keeps off-Telegram copies of listing photos. Archiving is
// best effort and never blocks the conversation.
type PhotoArchiver interface {
	Store(ctx context.Context, userID int64, fileName string, data []byte) (string, error)
}

// Bot is the Telegram transport: it turns updates into typed lifecycle
// events, and lifecycle results back into messages, keyboards and channel
// posts. All listing state lives behind the lifecycle service; the bot never
// re-reads its own messages to recover it.
type Bot struct {
	api     *tgbotapi.BotAPI
	svc     service.LifecycleService
	archive PhotoArchiver
	cfg     config.TelegramConfig
	log     logger.Logger
	disp    *dispatcher
}

func NewBot(cfg config.TelegramConfig, svc service.LifecycleService, archive PhotoArchiver, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	api.Debug = cfg.Debug

	return &Bot{
		api:     api,
		svc:     svc,
		archive: archive,
		cfg:     cfg,
		log:     log,
		disp:    newDispatcher(),
	}, nil
}

// Run long-polls Telegram until the context is cancelled, dispatching each
// update to the per-user queue.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(u)

	b.log.Infof("Telegram bot %s polling for updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.disp.Close()
			return nil
		case upd, ok := <-updates:
			if !ok {
				b.disp.Close()
				return nil
			}
			b.route(ctx, upd)
		}
	}
}

func (b *Bot) route(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		msg := upd.Message
		b.disp.Do(msg.From.ID, func() { b.handleMessage(ctx, msg) })
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		b.disp.Do(cq.From.ID, func() { b.handleCallback(ctx, cq) })
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.IsCommand() {
		if m.Command() == "start" {
			b.sendHTML(m.Chat.ID, textWelcome, startKeyboard())
		}
		return
	}

	userID := m.From.ID

	if len(m.Photo) > 0 {
		fileID := m.Photo[len(m.Photo)-1].FileID
		res, err := b.svc.HandleStepInput(ctx, userID, entity.PhotoUploaded{MediaRef: fileID})
		if err != nil {
			b.reportFailure(m.Chat.ID, err)
			return
		}
		if res.Reply.Code == flow.ReplyPhotoSaved {
			b.archivePhoto(userID, fileID)
		}
		b.sendReply(m.Chat.ID, res)
		return
	}

	if m.Text == "" {
		return
	}

	res, err := b.svc.HandleStepInput(ctx, userID, entity.TextEntered{
		Text:    m.Text,
		Contact: userContact(m.From),
	})
	if err != nil {
		b.reportFailure(m.Chat.ID, err)
		return
	}

	if res.Reply.Code == flow.ReplyReview && res.Draft != nil {
		b.sendReviewPreview(m.Chat.ID, res.Draft)
	}
	b.sendReply(m.Chat.ID, res)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Warnf("Telegram: failed to answer callback %s: %v", cq.ID, err)
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	act := parseCallback(cq.Data)
	switch act.typ {
	case actionCreateAd:
		res, err := b.svc.StartDraft(ctx, cq.From.ID)
		if err != nil {
			b.reportFailure(chatID, err)
			return
		}
		b.sendReply(chatID, res)

	case actionCategory:
		b.step(ctx, cq.From.ID, chatID, entity.CategorySelected{Code: act.arg})

	case actionPhotosDone:
		b.step(ctx, cq.From.ID, chatID, entity.PhotosDone{})

	case actionGoToStart:
		if _, err := b.svc.HandleStepInput(ctx, cq.From.ID, entity.GoToStart{}); err != nil {
			b.reportFailure(chatID, err)
			return
		}
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, textWelcome, startKeyboard())
		edit.ParseMode = tgbotapi.ModeHTML
		b.send(edit)

	case actionSubmit:
		b.submit(ctx, cq)

	case actionApprove:
		b.approve(ctx, cq, act.arg)

	case actionReject:
		b.reject(ctx, cq, act.arg)

	case actionSold:
		b.sold(ctx, cq, act.arg)
	}
}

func (b *Bot) step(ctx context.Context, userID, chatID int64, ev entity.Event) {
	res, err := b.svc.HandleStepInput(ctx, userID, ev)
	if err != nil {
		b.reportFailure(chatID, err)
		return
	}
	b.sendReply(chatID, res)
}

// submit finishes the draft and hands the snapshot to the moderation chat.
func (b *Bot) submit(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	res, err := b.svc.HandleStepInput(ctx, cq.From.ID, entity.Submit{})
	if err != nil {
		b.reportFailure(chatID, err)
		return
	}
	if res.ModerationID == "" {
		// Stray submit from an outdated keyboard.
		b.sendReply(chatID, res)
		return
	}

	fields := res.Submission.Fields
	b.sendMediaGroup(mediaGroup(b.cfg.ModerationChatID, fields.Photos, renderListing(fields, true)))

	prompt := tgbotapi.NewMessage(b.cfg.ModerationChatID, textNewSubmission)
	prompt.ParseMode = tgbotapi.ModeHTML
	prompt.ReplyMarkup = moderationKeyboard(res.ModerationID)
	b.send(prompt)

	b.sendHTML(chatID, textSubmitted, createNewAdKeyboard())
}

// approve publishes the listing to the channel first, then applies the
// decision with the resulting publication ref. If another moderator won the
// race the freshly published posts are taken down again.
func (b *Bot) approve(ctx context.Context, cq *tgbotapi.CallbackQuery, moderationID string) {
	chatID := cq.Message.Chat.ID

	rec, err := b.svc.GetSubmission(ctx, moderationID)
	if err != nil {
		b.sendHTML(chatID, textRecordMissing, nil)
		return
	}
	if rec.Status != entity.ModerationPending {
		b.sendHTML(chatID, textAlreadyActed, nil)
		return
	}

	caption := renderListing(rec.Fields, false)
	published, err := b.api.SendMediaGroup(mediaGroup(b.cfg.ChannelID, rec.Fields.Photos, caption))
	if err != nil || len(published) == 0 {
		b.log.Errorf("Telegram: failed to publish listing %s to channel: %v", moderationID, err)
		b.reportFailure(chatID, err)
		return
	}
	ref := formatRef(b.cfg.ChannelID, published[0].MessageID)

	res, err := b.svc.DecideSubmission(ctx, service.DecisionParams{
		ModerationID:   moderationID,
		Outcome:        entity.ModerationApproved,
		ModeratorID:    cq.From.ID,
		PublicationRef: ref,
		RenderedText:   caption,
	})
	if err != nil {
		b.reportFailure(chatID, err)
		return
	}

	switch res.Status {
	case service.DecisionApplied:
		b.notifyAuthor(rec.UserID, textApprovedAuthor, soldKeyboard(ref))
		b.closeModerationPrompt(cq, "✅ ОДОБРЕНО")
	case service.DecisionAlreadyDecided:
		// Someone else decided while we were publishing; take our post down.
		for _, m := range published {
			if _, err := b.api.Request(tgbotapi.NewDeleteMessage(b.cfg.ChannelID, m.MessageID)); err != nil {
				b.log.Warnf("Telegram: failed to delete duplicate channel post %d: %v", m.MessageID, err)
			}
		}
		b.sendHTML(chatID, textAlreadyActed, nil)
	case service.DecisionNotFound:
		b.sendHTML(chatID, textRecordMissing, nil)
	}
}

func (b *Bot) reject(ctx context.Context, cq *tgbotapi.CallbackQuery, moderationID string) {
	chatID := cq.Message.Chat.ID

	res, err := b.svc.DecideSubmission(ctx, service.DecisionParams{
		ModerationID: moderationID,
		Outcome:      entity.ModerationRejected,
		ModeratorID:  cq.From.ID,
	})
	if err != nil {
		b.reportFailure(chatID, err)
		return
	}

	switch res.Status {
	case service.DecisionApplied:
		b.notifyAuthor(res.Record.UserID, textRejectedAuthor, createNewAdKeyboard())
		b.closeModerationPrompt(cq, "❌ ОТКЛОНЕНО")
	case service.DecisionAlreadyDecided:
		b.sendHTML(chatID, textAlreadyActed, nil)
	case service.DecisionNotFound:
		b.sendHTML(chatID, textRecordMissing, nil)
	}
}

// sold marks the listing sold and appends the marker to the channel post.
// The caption comes from the ledger's stored rendered text, never from
// re-reading the post.
func (b *Bot) sold(ctx context.Context, cq *tgbotapi.CallbackQuery, ref string) {
	chatID := cq.Message.Chat.ID

	res, err := b.svc.RecordSale(ctx, ref, cq.From.ID)
	if err != nil {
		b.reportFailure(chatID, err)
		return
	}

	switch res.Status {
	case service.SaleRecorded:
		if channelID, messageID, ok := parseRef(ref); ok {
			edit := tgbotapi.NewEditMessageCaption(channelID, messageID, res.Listing.RenderedText+soldMarker)
			edit.ParseMode = tgbotapi.ModeHTML
			b.send(edit)
		} else {
			b.log.Errorf("Telegram: unparseable publication ref %q on sale", ref)
		}
		b.editText(cq, textSoldCongrats)
	case service.SaleAlreadySold:
		b.editText(cq, textAlreadySold)
	case service.SaleNotFound:
		b.editText(cq, textSaleNotFound)
	}
}

func (b *Bot) sendReviewPreview(chatID int64, draft *entity.Draft) {
	if !hasUsername(entity.Contact{Mention: draft.Fields.ContactMention}) {
		b.sendHTML(chatID, textNoUsername, nil)
	}
	b.sendMediaGroup(mediaGroup(chatID, draft.Fields.Photos, renderListing(draft.Fields, false)))
}

// sendReply renders a lifecycle step reply with the keyboard that belongs to
// its stage of the conversation.
func (b *Bot) sendReply(chatID int64, res *service.StepResult) {
	text := replyText(res.Reply)
	if text == "" {
		return
	}

	switch res.Reply.Code {
	case flow.ReplyAskCategory:
		b.sendHTML(chatID, text, categoryKeyboard())
	case flow.ReplyAskPhotos, flow.ReplyPhotoSaved:
		b.sendHTML(chatID, text, photosDoneKeyboard())
	case flow.ReplyReview:
		b.sendHTML(chatID, text, reviewKeyboard())
	case flow.ReplyGoToStart:
		b.sendHTML(chatID, text, startKeyboard())
	case flow.ReplyTitleTooLong, flow.ReplyDescriptionTooLong, flow.ReplyInvalidPrice:
		b.sendHTML(chatID, text, errorKeyboard())
	default:
		b.sendHTML(chatID, text, nil)
	}
}

func (b *Bot) notifyAuthor(userID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		// The author may have blocked the bot; the decision stands either way.
		b.log.Warnf("Telegram: failed to notify user %d: %v", userID, err)
	}
}

func (b *Bot) closeModerationPrompt(cq *tgbotapi.CallbackQuery, verdict string) {
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, cq.Message.Text+"\n\n"+verdict)
	b.send(edit)
}

func (b *Bot) editText(cq *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)
}

func (b *Bot) sendHTML(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warnf("Telegram: delivery failed: %v", err)
	}
}

func (b *Bot) sendMediaGroup(c tgbotapi.MediaGroupConfig) {
	if _, err := b.api.SendMediaGroup(c); err != nil {
		b.log.Warnf("Telegram: media group delivery failed: %v", err)
	}
}

func (b *Bot) reportFailure(chatID int64, err error) {
	b.log.Errorf("Telegram: step failed for chat %d: %v", chatID, err)
	b.sendHTML(chatID, "⚠️ <i>Что-то пошло не так. Попробуй ещё раз.</i>", nil)
}

func (b *Bot) archivePhoto(userID int64, fileID string) {
	if b.archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		url, err := b.api.GetFileDirectURL(fileID)
		if err != nil {
			b.log.Warnf("Telegram: failed to resolve file %s for archiving: %v", fileID, err)
			return
		}
		resp, err := http.Get(url)
		if err != nil {
			b.log.Warnf("Telegram: failed to download file %s for archiving: %v", fileID, err)
			return
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			b.log.Warnf("Telegram: failed to read file %s for archiving: %v", fileID, err)
			return
		}
		if _, err := b.archive.Store(ctx, userID, fileID+".jpg", data); err != nil {
			b.log.Warnf("Telegram: failed to archive photo %s: %v", fileID, err)
		}
	}()
}

func formatRef(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

func parseRef(ref string) (chatID int64, messageID int, ok bool) {
	chatPart, msgPart, found := strings.Cut(ref, ":")
	if !found {
		return 0, 0, false
	}
	chatID, err := strconv.ParseInt(chatPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	messageID, err = strconv.Atoi(msgPart)
	if err != nil {
		return 0, 0, false
	}
	return chatID, messageID, true
}
