package entity

import "time"

type ListingStatus string

const (
	StatusActive ListingStatus = "active"
	StatusSold   ListingStatus = "sold"
)

// PublishedListing is a listing that passed moderation and went out to the
// channel. PublicationRef is the opaque locator of the channel post; later
// sale events arrive keyed by it, not by our id. RenderedText is the caption
// as published, kept here so the sold marker is appended from ledger state
// instead of re-fetching the post.
type PublishedListing struct {
	ID             string        `bson:"_id,omitempty"`
	UserID         int64         `bson:"user_id"`
	Fields         ListingFields `bson:"fields"`
	PublicationRef string        `bson:"publication_ref"`
	RenderedText   string        `bson:"rendered_text"`
	Status         ListingStatus `bson:"status"`
	CreatedAt      time.Time     `bson:"created_at"`
	SoldAt         time.Time     `bson:"sold_at,omitempty"`
	SoldBy         int64         `bson:"sold_by,omitempty"`
}
