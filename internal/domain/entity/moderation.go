package entity

import "time"

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// ModerationRecord is a submitted listing awaiting or having received a
// moderator decision. Pending is the only initial status; approved and
// rejected are terminal and a record transitions exactly once.
type ModerationRecord struct {
	ID          string           `bson:"_id,omitempty"`
	UserID      int64            `bson:"user_id"`
	Fields      ListingFields    `bson:"fields"`
	Status      ModerationStatus `bson:"status"`
	ModeratorID int64            `bson:"moderator_id,omitempty"`
	CreatedAt   time.Time        `bson:"created_at"`
	DecidedAt   time.Time        `bson:"decided_at,omitempty"`
}

func (s ModerationStatus) Terminal() bool {
	return s == ModerationApproved || s == ModerationRejected
}
