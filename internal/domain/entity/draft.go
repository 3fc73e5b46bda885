package entity

import "time"

type Step string

const (
	StepChoosingCategory    Step = "choosing_category"
	StepCollectingPhotos    Step = "collecting_photos"
	StepEnteringTitle       Step = "entering_title"
	StepEnteringDescription Step = "entering_description"
	StepEnteringPrice       Step = "entering_price"
	StepReviewing           Step = "reviewing"
)

// ListingFields is the snapshot of everything a user fills in while building
// a listing. The same snapshot travels to the moderation record and, after
// approval, to the published listing, so neither depends on the draft still
// existing.
type ListingFields struct {
	Category       string   `bson:"category" json:"category"`
	Photos         []string `bson:"photos" json:"photos"`
	Title          string   `bson:"title" json:"title"`
	Description    string   `bson:"description" json:"description"`
	Price          string   `bson:"price" json:"price"`
	ContactMention string   `bson:"contact_mention" json:"contact_mention"`
	ContactDisplay string   `bson:"contact_display" json:"contact_display"`
}

// Draft is the in-progress listing form for one user. One draft per user;
// deleted outright on submission or restart, never reset in place.
type Draft struct {
	UserID    int64         `bson:"_id"`
	Step      Step          `bson:"step"`
	Fields    ListingFields `bson:"fields"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func NewDraft(userID int64) *Draft {
	return &Draft{
		UserID:    userID,
		Step:      StepChoosingCategory,
		UpdatedAt: time.Now().UTC(),
	}
}

// Submission is the terminal output of a completed draft handed off to
// moderation.
type Submission struct {
	UserID int64
	Fields ListingFields
}
