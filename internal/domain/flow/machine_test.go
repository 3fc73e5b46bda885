package flow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedgearperm/market-bot/internal/domain/entity"
)

const testUserID int64 = 42

func TestAdvance_FullWalkToSubmission(t *testing.T) {
	d := entity.NewDraft(testUserID)
	assert.Equal(t, entity.StepChoosingCategory, d.Step)

	out := Advance(d, entity.CategorySelected{Code: "sell"})
	require.NotNil(t, out.Draft)
	assert.False(t, out.UnknownCategory)
	assert.Equal(t, ReplyAskPhotos, out.Reply.Code)
	assert.Equal(t, "Продажа", out.Reply.Category.Label)
	assert.Equal(t, "sell", out.Draft.Fields.Category)
	assert.Equal(t, entity.StepCollectingPhotos, out.Draft.Step)

	out = Advance(out.Draft, entity.PhotoUploaded{MediaRef: "file-1"})
	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyPhotoSaved, out.Reply.Code)
	assert.Equal(t, 1, out.Reply.PhotoCount)

	out = Advance(out.Draft, entity.PhotoUploaded{MediaRef: "file-2"})
	require.NotNil(t, out.Draft)
	assert.Equal(t, 2, out.Reply.PhotoCount)

	out = Advance(out.Draft, entity.PhotosDone{})
	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyAskTitle, out.Reply.Code)
	assert.Equal(t, entity.StepEnteringTitle, out.Draft.Step)

	out = Advance(out.Draft, entity.TextEntered{Text: "Brooks saddle"})
	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyAskDescription, out.Reply.Code)
	assert.Equal(t, "Brooks saddle", out.Draft.Fields.Title)

	out = Advance(out.Draft, entity.TextEntered{Text: "Used, good condition"})
	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyAskPrice, out.Reply.Code)
	assert.Equal(t, "Used, good condition", out.Draft.Fields.Description)

	out = Advance(out.Draft, entity.TextEntered{
		Text:    "3000",
		Contact: entity.Contact{Mention: "@seller", Display: "@seller"},
	})
	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyReview, out.Reply.Code)
	assert.Equal(t, entity.StepReviewing, out.Draft.Step)
	assert.Equal(t, "3 000 ₽", out.Draft.Fields.Price)
	assert.Equal(t, "@seller", out.Draft.Fields.ContactMention)

	out = Advance(out.Draft, entity.Submit{})
	require.NotNil(t, out.Submission)
	assert.Nil(t, out.Draft)
	assert.Equal(t, testUserID, out.Submission.UserID)
	assert.Equal(t, []string{"file-1", "file-2"}, out.Submission.Fields.Photos)
	assert.Equal(t, "Brooks saddle", out.Submission.Fields.Title)
	assert.Equal(t, "3 000 ₽", out.Submission.Fields.Price)
}

func TestAdvance_UnknownCategory_FallsBackToOther(t *testing.T) {
	d := entity.NewDraft(testUserID)

	out := Advance(d, entity.CategorySelected{Code: "bogus"})

	require.NotNil(t, out.Draft)
	assert.True(t, out.UnknownCategory)
	assert.Equal(t, CategoryOther.Code, out.Draft.Fields.Category)
	assert.Equal(t, ReplyAskPhotos, out.Reply.Code)
	assert.Equal(t, entity.StepCollectingPhotos, out.Draft.Step)
}

func TestAdvance_PhotoCap(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "sell"})
	Advance(d, entity.PhotoUploaded{MediaRef: "a"})
	Advance(d, entity.PhotoUploaded{MediaRef: "b"})
	Advance(d, entity.PhotoUploaded{MediaRef: "c"})

	out := Advance(d, entity.PhotoUploaded{MediaRef: "d"})

	assert.True(t, out.Rejected)
	assert.Equal(t, ReplyEnoughPhotos, out.Reply.Code)
	assert.Equal(t, []string{"a", "b", "c"}, d.Fields.Photos)
}

func TestAdvance_PhotosDone_RequiresAtLeastOne(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "buy"})

	out := Advance(d, entity.PhotosDone{})

	assert.True(t, out.Rejected)
	assert.Equal(t, ReplyNeedPhoto, out.Reply.Code)
	assert.Equal(t, entity.StepCollectingPhotos, d.Step)
}

func TestAdvance_TitleLength(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "sell"})
	Advance(d, entity.PhotoUploaded{MediaRef: "a"})
	Advance(d, entity.PhotosDone{})

	tooLong := strings.Repeat("ж", MaxTitleLen+1)
	out := Advance(d, entity.TextEntered{Text: tooLong})
	assert.True(t, out.Rejected)
	assert.Equal(t, ReplyTitleTooLong, out.Reply.Code)
	assert.Equal(t, entity.StepEnteringTitle, d.Step)
	assert.Empty(t, d.Fields.Title)

	exact := strings.Repeat("ж", MaxTitleLen)
	out = Advance(d, entity.TextEntered{Text: exact})
	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyAskDescription, out.Reply.Code)
	assert.Equal(t, exact, out.Draft.Fields.Title)
}

func TestAdvance_DescriptionLength(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "sell"})
	Advance(d, entity.PhotoUploaded{MediaRef: "a"})
	Advance(d, entity.PhotosDone{})
	Advance(d, entity.TextEntered{Text: "Title"})

	out := Advance(d, entity.TextEntered{Text: strings.Repeat("ж", MaxDescriptionLen+1)})
	assert.True(t, out.Rejected)
	assert.Equal(t, ReplyDescriptionTooLong, out.Reply.Code)
	assert.Equal(t, entity.StepEnteringDescription, d.Step)
}

func TestAdvance_InvalidPrice_KeepsStep(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "sell"})
	Advance(d, entity.PhotoUploaded{MediaRef: "a"})
	Advance(d, entity.PhotosDone{})
	Advance(d, entity.TextEntered{Text: "Title"})
	Advance(d, entity.TextEntered{Text: "Description"})

	out := Advance(d, entity.TextEntered{Text: "expensive"})

	assert.True(t, out.Rejected)
	assert.Equal(t, ReplyInvalidPrice, out.Reply.Code)
	assert.Equal(t, entity.StepEnteringPrice, d.Step)
	assert.Empty(t, d.Fields.Price)
}

func TestAdvance_Restart_ReplacesDraft(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "sell"})
	Advance(d, entity.PhotoUploaded{MediaRef: "a"})

	out := Advance(d, entity.Restart{})

	require.NotNil(t, out.Draft)
	assert.Equal(t, ReplyAskCategory, out.Reply.Code)
	assert.Equal(t, testUserID, out.Draft.UserID)
	assert.Equal(t, entity.StepChoosingCategory, out.Draft.Step)
	assert.Empty(t, out.Draft.Fields.Photos)
}

func TestAdvance_GoToStart_DropsDraft(t *testing.T) {
	d := entity.NewDraft(testUserID)
	Advance(d, entity.CategorySelected{Code: "sell"})

	out := Advance(d, entity.GoToStart{})

	assert.Nil(t, out.Draft)
	assert.Nil(t, out.Submission)
	assert.False(t, out.Rejected)
	assert.Equal(t, ReplyGoToStart, out.Reply.Code)
}

func TestAdvance_EventOutOfStep_Rejected(t *testing.T) {
	d := entity.NewDraft(testUserID)

	out := Advance(d, entity.PhotoUploaded{MediaRef: "a"})
	assert.True(t, out.Rejected)
	assert.Equal(t, ReplyNone, out.Reply.Code)

	out = Advance(d, entity.Submit{})
	assert.True(t, out.Rejected)
	assert.Nil(t, out.Submission)
	assert.Equal(t, entity.StepChoosingCategory, d.Step)
}

func TestCategoryByCode(t *testing.T) {
	cat, ok := CategoryByCode("event")
	assert.True(t, ok)
	assert.Equal(t, "Анонс события", cat.Label)
	assert.Equal(t, "#анонс", cat.Tag)

	cat, ok = CategoryByCode("nope")
	assert.False(t, ok)
	assert.Equal(t, CategoryOther, cat)
}
