package repository

import (
	"context"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

// DraftRepository is the durable per-user conversation store. One draft per
// user id; a missing entry is the valid "no active draft" state and comes
// back as ErrNotFound. Put must be an atomic whole-draft write so that a
// retried event never exposes a half-updated draft.
type DraftRepository interface {
	Get(ctx context.Context, userID int64) (*entity.Draft, error)
	Put(ctx context.Context, draft *entity.Draft) error
	Delete(ctx context.Context, userID int64) error
}
