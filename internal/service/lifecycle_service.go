package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixedgearperm/market-bot/internal/adapter/nats"
	"github.com/fixedgearperm/market-bot/internal/domain/entity"
	"github.com/fixedgearperm/market-bot/internal/domain/flow"
	"github.com/fixedgearperm/market-bot/internal/platform/logger"
	"github.com/fixedgearperm/market-bot/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	natsSubjectListingSubmitted = "listing.submitted"
	natsSubjectListingApproved  = "listing.approved"
	natsSubjectListingRejected  = "listing.rejected"
	natsSubjectListingSold      = "listing.sold"
)

// StepResult is what one inbound user event produced.
type StepResult struct {
	Reply flow.Reply
	// Draft is the persisted draft after the event, nil when the draft was
	// deleted (submission, restart to idle) or when validation rejected the
	// event.
	Draft *entity.Draft
	// ModerationID is set when the event completed the draft and a
	// moderation record was created.
	ModerationID string
	Submission   *entity.Submission
}

type DecisionStatus string

const (
	DecisionApplied        DecisionStatus = "applied"
	DecisionAlreadyDecided DecisionStatus = "already_decided"
	DecisionNotFound       DecisionStatus = "not_found"
)

type DecisionParams struct {
	ModerationID string
	Outcome      entity.ModerationStatus
	ModeratorID  int64
	// PublicationRef and RenderedText accompany an approval: the caller has
	// already performed the external publish action and hands us its locator
	// and the caption as published.
	PublicationRef string
	RenderedText   string
}

type DecisionResult struct {
	Status      DecisionStatus
	Record      *entity.ModerationRecord
	PublishedID string
}

type SaleStatus string

const (
	SaleRecorded    SaleStatus = "recorded"
	SaleAlreadySold SaleStatus = "already_sold"
	SaleNotFound    SaleStatus = "not_found"
)

type SaleResult struct {
	Status  SaleStatus
	Listing *entity.PublishedListing
}

// SubmissionNotifier is the out-of-band alert to moderators (email backstop).
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, moderationID string, fields entity.ListingFields) error
}

// LifecycleService drives a listing from draft through moderation to
// publication and sale. It holds no state of its own; all durable state
// lives in the injected repositories.
type LifecycleService interface {
	StartDraft(ctx context.Context, userID int64) (*StepResult, error)
	HandleStepInput(ctx context.Context, userID int64, ev entity.Event) (*StepResult, error)
	GetSubmission(ctx context.Context, moderationID string) (*entity.ModerationRecord, error)
	DecideSubmission(ctx context.Context, params DecisionParams) (*DecisionResult, error)
	RecordSale(ctx context.Context, publicationRef string, soldBy int64) (*SaleResult, error)
}

type lifecycleService struct {
	drafts       repository.DraftRepository
	moderation   repository.ModerationRepository
	published    repository.PublishedRepository
	listingCache repository.ListingCache
	cacheTTL     time.Duration
	msgPublisher nats.MessagePublisher
	notifier     SubmissionNotifier
	tracer       trace.Tracer
	log          logger.Logger
}

func NewLifecycleService(
	drafts repository.DraftRepository,
	moderation repository.ModerationRepository,
	published repository.PublishedRepository,
	listingCache repository.ListingCache,
	cacheTTL time.Duration,
	msgPublisher nats.MessagePublisher,
	notifier SubmissionNotifier,
	log logger.Logger,
) LifecycleService {
	return &lifecycleService{
		drafts:       drafts,
		moderation:   moderation,
		published:    published,
		listingCache: listingCache,
		cacheTTL:     cacheTTL,
		msgPublisher: msgPublisher,
		notifier:     notifier,
		tracer:       otel.Tracer("market-bot/lifecycle"),
		log:          log,
	}
}

// StartDraft begins a fresh draft for the user, replacing any draft that was
// in progress.
func (s *lifecycleService) StartDraft(ctx context.Context, userID int64) (*StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.StartDraft")
	defer span.End()

	draft := entity.NewDraft(userID)
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to start draft for user %d: %w", userID, err)
	}

	s.log.Infof("LifecycleService: started draft for user %d", userID)
	return &StepResult{
		Reply: flow.Reply{Code: flow.ReplyAskCategory},
		Draft: draft,
	}, nil
}

// HandleStepInput advances the user's draft by one event. Validation
// failures come back in the reply with the draft untouched; a completed
// draft is deleted and handed to the moderation ledger, whose id is
// returned.
func (s *lifecycleService) HandleStepInput(ctx context.Context, userID int64, ev entity.Event) (*StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.HandleStepInput")
	defer span.End()

	draft, err := s.drafts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No active draft: only "back to start" makes sense, everything
			// else is a stray event from an old keyboard.
			return &StepResult{}, nil
		}
		return nil, fmt.Errorf("failed to load draft for user %d: %w", userID, err)
	}

	out := flow.Advance(draft, ev)
	if out.UnknownCategory {
		s.log.Warnf("LifecycleService: unknown category code from user %d, falling back to %q", userID, flow.CategoryOther.Code)
	}

	if out.Rejected {
		return &StepResult{Reply: out.Reply, Draft: draft}, nil
	}

	if out.Submission != nil {
		return s.submit(ctx, out.Submission, out.Reply)
	}

	if out.Draft == nil {
		if err := s.drafts.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to clear draft for user %d: %w", userID, err)
		}
		return &StepResult{Reply: out.Reply}, nil
	}

	if err := s.drafts.Put(ctx, out.Draft); err != nil {
		return nil, fmt.Errorf("failed to save draft for user %d: %w", userID, err)
	}
	return &StepResult{Reply: out.Reply, Draft: out.Draft}, nil
}

func (s *lifecycleService) submit(ctx context.Context, sub *entity.Submission, reply flow.Reply) (*StepResult, error) {
	moderationID, err := s.moderation.Create(ctx, repository.CreateModerationParams{
		UserID: sub.UserID,
		Fields: sub.Fields,
	})
	if err != nil {
		// The draft is still intact; the user can retry the submit.
		return nil, fmt.Errorf("failed to create moderation record for user %d: %w", sub.UserID, err)
	}

	if err := s.drafts.Delete(ctx, sub.UserID); err != nil {
		// The submission is already in the queue; a leftover draft is
		// annoying but harmless, the next restart replaces it.
		s.log.Errorf("LifecycleService: failed to delete draft for user %d after submission %s: %v", sub.UserID, moderationID, err)
	}

	s.log.Infof("LifecycleService: user %d submitted listing, moderation id %s", sub.UserID, moderationID)

	s.publishEvent(ctx, natsSubjectListingSubmitted, lifecycleEvent{
		ModerationID: moderationID,
		UserID:       sub.UserID,
		Title:        sub.Fields.Title,
	})
	if s.notifier != nil {
		if err := s.notifier.NotifySubmission(ctx, moderationID, sub.Fields); err != nil {
			s.log.Warnf("LifecycleService: moderator notification for %s failed: %v", moderationID, err)
		}
	}

	return &StepResult{
		Reply:        reply,
		ModerationID: moderationID,
		Submission:   sub,
	}, nil
}

func (s *lifecycleService) GetSubmission(ctx context.Context, moderationID string) (*entity.ModerationRecord, error) {
	return s.moderation.GetByID(ctx, moderationID)
}

// DecideSubmission applies a moderator's decision. The moderation status
// flips exactly once; duplicate decisions return DecisionAlreadyDecided with
// the originally persisted record and cause no side effects. On approval the
// published-listing ledger entry is created before any notification, so a
// later delivery failure cannot roll the decision back.
func (s *lifecycleService) DecideSubmission(ctx context.Context, params DecisionParams) (*DecisionResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.DecideSubmission")
	defer span.End()

	record, err := s.moderation.Decide(ctx, params.ModerationID, params.Outcome, params.ModeratorID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyDecided) {
			s.log.Infof("LifecycleService: moderation %s already decided (%s)", params.ModerationID, record.Status)
			return &DecisionResult{Status: DecisionAlreadyDecided, Record: record}, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return &DecisionResult{Status: DecisionNotFound}, nil
		}
		return nil, fmt.Errorf("failed to decide moderation %s: %w", params.ModerationID, err)
	}

	result := &DecisionResult{Status: DecisionApplied, Record: record}

	if params.Outcome == entity.ModerationApproved {
		publishedID, err := s.published.Create(ctx, repository.CreatePublishedParams{
			UserID:         record.UserID,
			Fields:         record.Fields,
			PublicationRef: params.PublicationRef,
			RenderedText:   params.RenderedText,
		})
		if err != nil {
			// The approval itself is durable; surface the ledger failure so
			// the caller can retry registration of the publication.
			return nil, fmt.Errorf("failed to register publication for moderation %s: %w", params.ModerationID, err)
		}
		result.PublishedID = publishedID

		s.cacheListing(ctx, &entity.PublishedListing{
			ID:             publishedID,
			UserID:         record.UserID,
			Fields:         record.Fields,
			PublicationRef: params.PublicationRef,
			RenderedText:   params.RenderedText,
			Status:         entity.StatusActive,
			CreatedAt:      time.Now().UTC(),
		})

		s.log.Infof("LifecycleService: moderation %s approved by %d, published as %s (%s)",
			params.ModerationID, params.ModeratorID, publishedID, params.PublicationRef)
		s.publishEvent(ctx, natsSubjectListingApproved, lifecycleEvent{
			ModerationID:   params.ModerationID,
			PublishedID:    publishedID,
			PublicationRef: params.PublicationRef,
			UserID:         record.UserID,
			Title:          record.Fields.Title,
		})
		return result, nil
	}

	s.log.Infof("LifecycleService: moderation %s rejected by %d", params.ModerationID, params.ModeratorID)
	s.publishEvent(ctx, natsSubjectListingRejected, lifecycleEvent{
		ModerationID: params.ModerationID,
		UserID:       record.UserID,
		Title:        record.Fields.Title,
	})
	return result, nil
}

// RecordSale resolves a sale event by publication ref and transitions the
// listing to sold. The first caller wins; repeats get SaleAlreadySold with
// the original buyer intact.
func (s *lifecycleService) RecordSale(ctx context.Context, publicationRef string, soldBy int64) (*SaleResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.RecordSale")
	defer span.End()

	listing, err := s.lookupByRef(ctx, publicationRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &SaleResult{Status: SaleNotFound}, nil
		}
		return nil, fmt.Errorf("failed to resolve publication ref %s: %w", publicationRef, err)
	}

	sold, err := s.published.MarkSold(ctx, listing.ID, soldBy)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadySold) {
			return &SaleResult{Status: SaleAlreadySold, Listing: sold}, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return &SaleResult{Status: SaleNotFound}, nil
		}
		return nil, fmt.Errorf("failed to mark listing %s sold: %w", listing.ID, err)
	}

	s.dropCachedListing(ctx, sold)

	s.log.Infof("LifecycleService: listing %s (%s) sold, buyer contact via user %d", sold.ID, publicationRef, soldBy)
	s.publishEvent(ctx, natsSubjectListingSold, lifecycleEvent{
		PublishedID:    sold.ID,
		PublicationRef: publicationRef,
		UserID:         sold.UserID,
		Title:          sold.Fields.Title,
	})
	return &SaleResult{Status: SaleRecorded, Listing: sold}, nil
}

func (s *lifecycleService) lookupByRef(ctx context.Context, ref string) (*entity.PublishedListing, error) {
	if s.listingCache != nil {
		cached, err := s.listingCache.GetByRef(ctx, ref)
		if err != nil {
			s.log.Warnf("LifecycleService: listing cache lookup for %s failed: %v", ref, err)
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.published.FindByPublicationRef(ctx, ref)
}

func (s *lifecycleService) cacheListing(ctx context.Context, listing *entity.PublishedListing) {
	if s.listingCache == nil {
		return
	}
	if err := s.listingCache.Set(ctx, listing, s.cacheTTL); err != nil {
		s.log.Warnf("LifecycleService: failed to cache listing %s: %v", listing.ID, err)
	}
}

func (s *lifecycleService) dropCachedListing(ctx context.Context, listing *entity.PublishedListing) {
	if s.listingCache == nil {
		return
	}
	if err := s.listingCache.Delete(ctx, listing); err != nil {
		s.log.Warnf("LifecycleService: failed to drop cached listing %s: %v", listing.ID, err)
	}
}

type lifecycleEvent struct {
	ModerationID   string `json:"moderation_id,omitempty"`
	PublishedID    string `json:"published_id,omitempty"`
	PublicationRef string `json:"publication_ref,omitempty"`
	UserID         int64  `json:"user_id"`
	Title          string `json:"title,omitempty"`
}

func (s *lifecycleService) publishEvent(ctx context.Context, subject string, event lifecycleEvent) {
	if s.msgPublisher == nil {
		return
	}
	if err := s.msgPublisher.Publish(ctx, subject, event); err != nil {
		s.log.Warnf("LifecycleService: failed to publish %s event: %v", subject, err)
	}
}
