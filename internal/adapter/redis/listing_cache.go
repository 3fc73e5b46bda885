package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
	"github.com/fixedgearperm/market-bot/internal/repository"
	"github.com/redis/go-redis/v9"
)

const listingRefKeyPrefix = "listing:ref:"

type listingCache struct {
	client *redis.Client
}

func NewListingCache(client *redis.Client) repository.ListingCache {
	return &listingCache{client: client}
}

func refKey(ref string) string {
	return listingRefKeyPrefix + ref
}

func (c *listingCache) GetByRef(ctx context.Context, ref string) (*entity.PublishedListing, error) {
	val, err := c.client.Get(ctx, refKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, fmt.Errorf("failed to get listing by ref %s from redis: %w", ref, err)
	}

	var listing entity.PublishedListing
	if err := json.Unmarshal(val, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached listing for ref %s: %w", ref, err)
	}
	return &listing, nil
}

func (c *listingCache) Set(ctx context.Context, listing *entity.PublishedListing, ttl time.Duration) error {
	if listing == nil || listing.PublicationRef == "" {
		return errors.New("cannot cache nil listing or listing without publication ref")
	}

	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing %s: %w", listing.ID, err)
	}
	if err := c.client.Set(ctx, refKey(listing.PublicationRef), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache listing %s: %w", listing.ID, err)
	}
	return nil
}

func (c *listingCache) Delete(ctx context.Context, listing *entity.PublishedListing) error {
	if listing == nil {
		return nil
	}
	if err := c.client.Del(ctx, refKey(listing.PublicationRef)).Err(); err != nil {
		return fmt.Errorf("failed to drop cached listing %s: %w", listing.ID, err)
	}
	return nil
}
