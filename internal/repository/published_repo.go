package repository

import (
	"context"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

type CreatePublishedParams struct {
	UserID         int64
	Fields         entity.ListingFields
	PublicationRef string
	RenderedText   string
}

// PublishedRepository stores listings that passed moderation. Lookup by
// publication ref must be supported because sale events arrive keyed by the
// channel post locator, not by our id.
//
// MarkSold atomically checks that the listing is still active; a listing
// already sold yields ErrAlreadySold and keeps the first buyer's identity.
type PublishedRepository interface {
	Create(ctx context.Context, params CreatePublishedParams) (string, error)
	GetByID(ctx context.Context, id string) (*entity.PublishedListing, error)
	FindByPublicationRef(ctx context.Context, ref string) (*entity.PublishedListing, error)
	MarkSold(ctx context.Context, id string, soldBy int64) (*entity.PublishedListing, error)
}
