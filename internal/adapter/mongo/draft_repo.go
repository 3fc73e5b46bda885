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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const draftCollectionName = "drafts"

type draftRepository struct {
	collection *mongo.Collection
}

func NewDraftRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.DraftRepository {
	return &draftRepository{
		collection: client.Database(cfg.Database).Collection(draftCollectionName),
	}
}

func (r *draftRepository) Get(ctx context.Context, userID int64) (*entity.Draft, error) {
	var draft entity.Draft
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&draft)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft for user %d: %w", userID, err)
	}
	return &draft, nil
}

// Put replaces the whole draft document in one write. The draft is keyed by
// user id, so a single ReplaceOne gives the per-user atomic read-modify-write
// the conversation flow relies on.
func (r *draftRepository) Put(ctx context.Context, draft *entity.Draft) error {
	if draft == nil || draft.UserID == 0 {
		return errors.New("cannot save nil draft or draft with empty user id")
	}
	draft.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": draft.UserID}, draft, opts)
	if err != nil {
		return fmt.Errorf("failed to save draft for user %d: %w", draft.UserID, err)
	}
	return nil
}

func (r *draftRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("failed to delete draft for user %d: %w", userID, err)
	}
	return nil
}
