package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixedgearperm/market-bot/internal/app/config"
	"github.com/fixedgearperm/market-bot/internal/domain/entity"
	"github.com/fixedgearperm/market-bot/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const moderationCollectionName = "moderation_records"

type moderationRepository struct {
	collection *mongo.Collection
}

func NewModerationRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ModerationRepository {
	return &moderationRepository{
		collection: client.Database(cfg.Database).Collection(moderationCollectionName),
	}
}

func (r *moderationRepository) Create(ctx context.Context, params repository.CreateModerationParams) (string, error) {
	record := entity.ModerationRecord{
		UserID:    params.UserID,
		Fields:    params.Fields,
		Status:    entity.ModerationPending,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create moderation record: %w", err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *moderationRepository) GetByID(ctx context.Context, id string) (*entity.ModerationRecord, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid moderation record ID format: %w", repository.ErrNotFound)
	}

	var record entity.ModerationRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get moderation record %s: %w", id, err)
	}
	return &record, nil
}

// Decide performs the single-decision transition as one FindOneAndUpdate
// filtered on pending status. Concurrent moderators race on the filter; at
// most one update wins, the rest see the terminal record and get
// ErrAlreadyDecided.
func (r *moderationRepository) Decide(ctx context.Context, id string, outcome entity.ModerationStatus, moderatorID int64) (*entity.ModerationRecord, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("invalid moderation outcome %q", outcome)
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid moderation record ID format: %w", repository.ErrNotFound)
	}

	filter := bson.M{"_id": objID, "status": entity.ModerationPending}
	update := bson.M{"$set": bson.M{
		"status":       outcome,
		"moderator_id": moderatorID,
		"decided_at":   time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record entity.ModerationRecord
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to decide moderation record %s: %w", id, err)
	}

	// The filter missed: either the record does not exist or it is already
	// terminal. Re-read to tell the two apart.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return existing, repository.ErrAlreadyDecided
}
