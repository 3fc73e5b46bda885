package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
	"github.com/fixedgearperm/market-bot/internal/domain/flow"
	"github.com/fixedgearperm/market-bot/internal/repository"
)

// In-memory repositories with the same single-transition semantics as the
// Mongo adapters, so the whole lifecycle can run without infrastructure.

type memDraftRepo struct {
	mu     sync.Mutex
	drafts map[int64]entity.Draft
}

func newMemDraftRepo() *memDraftRepo {
	return &memDraftRepo{drafts: make(map[int64]entity.Draft)}
}

func (r *memDraftRepo) Get(_ context.Context, userID int64) (*entity.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := d
	return &copied, nil
}

func (r *memDraftRepo) Put(_ context.Context, draft *entity.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[draft.UserID] = *draft
	return nil
}

func (r *memDraftRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, userID)
	return nil
}

type memModerationRepo struct {
	mu      sync.Mutex
	seq     int
	records map[string]entity.ModerationRecord
}

func newMemModerationRepo() *memModerationRepo {
	return &memModerationRepo{records: make(map[string]entity.ModerationRecord)}
}

func (r *memModerationRepo) Create(_ context.Context, params repository.CreateModerationParams) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("mod-%d", r.seq)
	r.records[id] = entity.ModerationRecord{
		ID:        id,
		UserID:    params.UserID,
		Fields:    params.Fields,
		Status:    entity.ModerationPending,
		CreatedAt: time.Now().UTC(),
	}
	return id, nil
}

func (r *memModerationRepo) GetByID(_ context.Context, id string) (*entity.ModerationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (r *memModerationRepo) Decide(_ context.Context, id string, outcome entity.ModerationStatus, moderatorID int64) (*entity.ModerationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if rec.Status != entity.ModerationPending {
		copied := rec
		return &copied, repository.ErrAlreadyDecided
	}
	rec.Status = outcome
	rec.ModeratorID = moderatorID
	rec.DecidedAt = time.Now().UTC()
	r.records[id] = rec
	copied := rec
	return &copied, nil
}

type memPublishedRepo struct {
	mu       sync.Mutex
	seq      int
	listings map[string]entity.PublishedListing
	byRef    map[string]string
}

func newMemPublishedRepo() *memPublishedRepo {
	return &memPublishedRepo{listings: make(map[string]entity.PublishedListing), byRef: make(map[string]string)}
}

func (r *memPublishedRepo) Create(_ context.Context, params repository.CreatePublishedParams) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byRef[params.PublicationRef]; exists {
		return "", repository.ErrDuplicateRef
	}
	r.seq++
	id := fmt.Sprintf("pub-%d", r.seq)
	r.listings[id] = entity.PublishedListing{
		ID:             id,
		UserID:         params.UserID,
		Fields:         params.Fields,
		PublicationRef: params.PublicationRef,
		RenderedText:   params.RenderedText,
		Status:         entity.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	r.byRef[params.PublicationRef] = id
	return id, nil
}

func (r *memPublishedRepo) GetByID(_ context.Context, id string) (*entity.PublishedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := l
	return &copied, nil
}

func (r *memPublishedRepo) FindByPublicationRef(_ context.Context, ref string) (*entity.PublishedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := r.listings[id]
	return &copied, nil
}

func (r *memPublishedRepo) MarkSold(_ context.Context, id string, soldBy int64) (*entity.PublishedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if l.Status != entity.StatusActive {
		copied := l
		return &copied, repository.ErrAlreadySold
	}
	l.Status = entity.StatusSold
	l.SoldBy = soldBy
	l.SoldAt = time.Now().UTC()
	r.listings[id] = l
	copied := l
	return &copied, nil
}

func TestLifecycle_DraftToSoldEndToEnd(t *testing.T) {
	ctx := context.Background()
	drafts := newMemDraftRepo()
	moderation := newMemModerationRepo()
	published := newMemPublishedRepo()

	svc := NewLifecycleService(drafts, moderation, published, nil, time.Hour, nil, nil, NewNoOpLogger())

	const author int64 = 7
	const moderator int64 = 99
	const buyer int64 = 500

	_, err := svc.StartDraft(ctx, author)
	require.NoError(t, err)

	steps := []entity.Event{
		entity.CategorySelected{Code: "sell"},
		entity.PhotoUploaded{MediaRef: "file-1"},
		entity.PhotoUploaded{MediaRef: "file-2"},
		entity.PhotosDone{},
		entity.TextEntered{Text: "Brooks saddle"},
		entity.TextEntered{Text: "Used, good condition"},
	}
	for _, ev := range steps {
		res, err := svc.HandleStepInput(ctx, author, ev)
		require.NoError(t, err)
		require.False(t, res.Reply.Code == flow.ReplyNone, "event %T produced no reply", ev)
	}

	res, err := svc.HandleStepInput(ctx, author, entity.TextEntered{
		Text:    "3000",
		Contact: entity.Contact{Mention: "@seller", Display: "@seller"},
	})
	require.NoError(t, err)
	assert.Equal(t, flow.ReplyReview, res.Reply.Code)

	res, err = svc.HandleStepInput(ctx, author, entity.Submit{})
	require.NoError(t, err)
	require.NotEmpty(t, res.ModerationID)
	moderationID := res.ModerationID

	// Draft is gone; further input is a no-op.
	_, err = drafts.Get(ctx, author)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rec, err := svc.GetSubmission(ctx, moderationID)
	require.NoError(t, err)
	assert.Equal(t, entity.ModerationPending, rec.Status)
	assert.Equal(t, "3 000 ₽", rec.Fields.Price)

	decision, err := svc.DecideSubmission(ctx, DecisionParams{
		ModerationID:   moderationID,
		Outcome:        entity.ModerationApproved,
		ModeratorID:    moderator,
		PublicationRef: "-100500:42",
		RenderedText:   "caption as published",
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionApplied, decision.Status)
	require.NotEmpty(t, decision.PublishedID)

	// A second moderator acting on the same record changes nothing.
	second, err := svc.DecideSubmission(ctx, DecisionParams{
		ModerationID: moderationID,
		Outcome:      entity.ModerationRejected,
		ModeratorID:  moderator + 1,
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAlreadyDecided, second.Status)
	assert.Equal(t, entity.ModerationApproved, second.Record.Status)
	assert.Equal(t, moderator, second.Record.ModeratorID)

	sale, err := svc.RecordSale(ctx, "-100500:42", buyer)
	require.NoError(t, err)
	assert.Equal(t, SaleRecorded, sale.Status)
	assert.Equal(t, buyer, sale.Listing.SoldBy)
	assert.Equal(t, "caption as published", sale.Listing.RenderedText)

	repeat, err := svc.RecordSale(ctx, "-100500:42", buyer+1)
	require.NoError(t, err)
	assert.Equal(t, SaleAlreadySold, repeat.Status)
	assert.Equal(t, buyer, repeat.Listing.SoldBy)
}

func TestLifecycle_RestartDiscardsProgress(t *testing.T) {
	ctx := context.Background()
	drafts := newMemDraftRepo()
	svc := NewLifecycleService(drafts, newMemModerationRepo(), newMemPublishedRepo(), nil, time.Hour, nil, nil, NewNoOpLogger())

	const author int64 = 7
	_, err := svc.StartDraft(ctx, author)
	require.NoError(t, err)

	_, err = svc.HandleStepInput(ctx, author, entity.CategorySelected{Code: "buy"})
	require.NoError(t, err)
	_, err = svc.HandleStepInput(ctx, author, entity.PhotoUploaded{MediaRef: "file-1"})
	require.NoError(t, err)

	res, err := svc.HandleStepInput(ctx, author, entity.Restart{})
	require.NoError(t, err)
	assert.Equal(t, flow.ReplyAskCategory, res.Reply.Code)

	d, err := drafts.Get(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, entity.StepChoosingCategory, d.Step)
	assert.Empty(t, d.Fields.Photos)
}

func TestLifecycle_GoToStartDeletesDraft(t *testing.T) {
	ctx := context.Background()
	drafts := newMemDraftRepo()
	svc := NewLifecycleService(drafts, newMemModerationRepo(), newMemPublishedRepo(), nil, time.Hour, nil, nil, NewNoOpLogger())

	const author int64 = 7
	_, err := svc.StartDraft(ctx, author)
	require.NoError(t, err)

	res, err := svc.HandleStepInput(ctx, author, entity.GoToStart{})
	require.NoError(t, err)
	assert.Equal(t, flow.ReplyGoToStart, res.Reply.Code)

	_, err = drafts.Get(ctx, author)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
