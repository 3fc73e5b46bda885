package repository

import (
	"context"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

type CreateModerationParams struct {
	UserID int64
	Fields entity.ListingFields
}

// ModerationRepository stores submitted listings awaiting a decision.
//
// Decide atomically checks that the record is still pending and, only then,
// stamps the outcome, the moderator and the decision time. A record whose
// status is already terminal yields ErrAlreadyDecided; the stored outcome is
// never overwritten, so duplicate moderator actions are safe.
type ModerationRepository interface {
	Create(ctx context.Context, params CreateModerationParams) (string, error)
	GetByID(ctx context.Context, id string) (*entity.ModerationRecord, error)
	Decide(ctx context.Context, id string, outcome entity.ModerationStatus, moderatorID int64) (*entity.ModerationRecord, error)
}
