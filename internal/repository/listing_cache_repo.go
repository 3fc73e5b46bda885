package repository

import (
	"context"
	"time"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

// ListingCache is a read-through cache for published listings, keyed by
// publication ref. A miss is (nil, nil), never an error.
type ListingCache interface {
	GetByRef(ctx context.Context, ref string) (*entity.PublishedListing, error)
	Set(ctx context.Context, listing *entity.PublishedListing, ttl time.Duration) error
	Delete(ctx context.Context, listing *entity.PublishedListing) error
}
