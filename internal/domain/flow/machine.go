package flow

import (
	"time"
	"unicode/utf8"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

const (
	MaxPhotos         = 3
	MaxTitleLen       = 50
	MaxDescriptionLen = 500
)

type ReplyCode string

const (
	ReplyNone               ReplyCode = ""
	ReplyAskCategory        ReplyCode = "ask_category"
	ReplyAskPhotos          ReplyCode = "ask_photos"
	ReplyPhotoSaved         ReplyCode = "photo_saved"
	ReplyEnoughPhotos       ReplyCode = "enough_photos"
	ReplyNeedPhoto          ReplyCode = "need_photo"
	ReplyAskTitle           ReplyCode = "ask_title"
	ReplyTitleTooLong       ReplyCode = "title_too_long"
	ReplyAskDescription     ReplyCode = "ask_description"
	ReplyDescriptionTooLong ReplyCode = "description_too_long"
	ReplyAskPrice           ReplyCode = "ask_price"
	ReplyInvalidPrice       ReplyCode = "invalid_price"
	ReplyReview             ReplyCode = "review"
	ReplyGoToStart          ReplyCode = "go_to_start"
)

// Reply tells the transport what to say next. Rendering (wording, markup,
// keyboards) stays on the transport side.
type Reply struct {
	Code       ReplyCode
	Category   Category
	PhotoCount int
}

// Outcome is the result of advancing a draft by one event.
//
//   - Rejected set: validation failed, Draft is untouched and must not be
//     persisted.
//   - Submission set: the draft completed; delete it and hand the snapshot to
//     moderation.
//   - Draft nil (and no Submission): the user bailed to the start screen;
//     delete the draft.
//   - Otherwise persist Draft.
type Outcome struct {
	Draft      *entity.Draft
	Submission *entity.Submission
	Reply      Reply
	Rejected   bool

	// UnknownCategory reports that a category event carried a code outside
	// the fixed choice set. The selection still succeeds with the fallback
	// category, but the caller should log it: real keyboards only send known
	// codes, so this usually means a caller bug.
	UnknownCategory bool
}

// Advance is the draft state machine: a pure function of the current draft
// and one inbound event. It never touches storage and never fails; invalid
// input comes back as a Rejected outcome with the draft unchanged.
func Advance(d *entity.Draft, ev entity.Event) Outcome {
	switch ev.(type) {
	case entity.GoToStart:
		return Outcome{Reply: Reply{Code: ReplyGoToStart}}
	case entity.Restart:
		return Outcome{Draft: entity.NewDraft(d.UserID), Reply: Reply{Code: ReplyAskCategory}}
	}

	switch d.Step {
	case entity.StepChoosingCategory:
		if e, ok := ev.(entity.CategorySelected); ok {
			return chooseCategory(d, e)
		}
	case entity.StepCollectingPhotos:
		switch e := ev.(type) {
		case entity.PhotoUploaded:
			return addPhoto(d, e)
		case entity.PhotosDone:
			return finishPhotos(d)
		}
	case entity.StepEnteringTitle:
		if e, ok := ev.(entity.TextEntered); ok {
			return setTitle(d, e)
		}
	case entity.StepEnteringDescription:
		if e, ok := ev.(entity.TextEntered); ok {
			return setDescription(d, e)
		}
	case entity.StepEnteringPrice:
		if e, ok := ev.(entity.TextEntered); ok {
			return setPrice(d, e)
		}
	case entity.StepReviewing:
		if _, ok := ev.(entity.Submit); ok {
			return Outcome{Submission: &entity.Submission{UserID: d.UserID, Fields: d.Fields}}
		}
	}

	// Event does not apply to the current step; ignore it.
	return Outcome{Rejected: true}
}

func chooseCategory(d *entity.Draft, ev entity.CategorySelected) Outcome {
	cat, known := CategoryByCode(ev.Code)
	d.Fields.Category = cat.Code
	advance(d, entity.StepCollectingPhotos)
	return Outcome{
		Draft:           d,
		Reply:           Reply{Code: ReplyAskPhotos, Category: cat},
		UnknownCategory: !known,
	}
}

func addPhoto(d *entity.Draft, ev entity.PhotoUploaded) Outcome {
	if len(d.Fields.Photos) >= MaxPhotos {
		return Outcome{Rejected: true, Reply: Reply{Code: ReplyEnoughPhotos}}
	}
	d.Fields.Photos = append(d.Fields.Photos, ev.MediaRef)
	advance(d, entity.StepCollectingPhotos)
	return Outcome{Draft: d, Reply: Reply{Code: ReplyPhotoSaved, PhotoCount: len(d.Fields.Photos)}}
}

func finishPhotos(d *entity.Draft) Outcome {
	if len(d.Fields.Photos) == 0 {
		return Outcome{Rejected: true, Reply: Reply{Code: ReplyNeedPhoto}}
	}
	advance(d, entity.StepEnteringTitle)
	return Outcome{Draft: d, Reply: Reply{Code: ReplyAskTitle}}
}

func setTitle(d *entity.Draft, ev entity.TextEntered) Outcome {
	if utf8.RuneCountInString(ev.Text) > MaxTitleLen {
		return Outcome{Rejected: true, Reply: Reply{Code: ReplyTitleTooLong}}
	}
	d.Fields.Title = ev.Text
	advance(d, entity.StepEnteringDescription)
	return Outcome{Draft: d, Reply: Reply{Code: ReplyAskDescription}}
}

func setDescription(d *entity.Draft, ev entity.TextEntered) Outcome {
	if utf8.RuneCountInString(ev.Text) > MaxDescriptionLen {
		return Outcome{Rejected: true, Reply: Reply{Code: ReplyDescriptionTooLong}}
	}
	d.Fields.Description = ev.Text
	advance(d, entity.StepEnteringPrice)
	return Outcome{Draft: d, Reply: Reply{Code: ReplyAskPrice}}
}

func setPrice(d *entity.Draft, ev entity.TextEntered) Outcome {
	price, err := FormatPrice(ev.Text)
	if err != nil {
		return Outcome{Rejected: true, Reply: Reply{Code: ReplyInvalidPrice}}
	}
	d.Fields.Price = price
	d.Fields.ContactMention = ev.Contact.Mention
	d.Fields.ContactDisplay = ev.Contact.Display
	advance(d, entity.StepReviewing)
	return Outcome{Draft: d, Reply: Reply{Code: ReplyReview}}
}

func advance(d *entity.Draft, step entity.Step) {
	d.Step = step
	d.UpdatedAt = time.Now().UTC()
}
