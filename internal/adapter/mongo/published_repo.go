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

const publishedCollectionName = "published_listings"

type publishedRepository struct {
	collection *mongo.Collection
}

func NewPublishedRepository(ctx context.Context, client *mongo.Client, cfg config.MongoDBConfig) (repository.PublishedRepository, error) {
	collection := client.Database(cfg.Database).Collection(publishedCollectionName)

	// Sale events arrive keyed by the channel post locator; the unique index
	// both speeds up that lookup and rejects double registration of a ref.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "publication_ref", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, fmt.Errorf("failed to ensure publication_ref index: %w", err)
	}

	return &publishedRepository{collection: collection}, nil
}

func (r *publishedRepository) Create(ctx context.Context, params repository.CreatePublishedParams) (string, error) {
	listing := entity.PublishedListing{
		UserID:         params.UserID,
		Fields:         params.Fields,
		PublicationRef: params.PublicationRef,
		RenderedText:   params.RenderedText,
		Status:         entity.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}

	res, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("publication ref %s: %w", params.PublicationRef, repository.ErrDuplicateRef)
		}
		return "", fmt.Errorf("failed to create published listing: %w", err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *publishedRepository) GetByID(ctx context.Context, id string) (*entity.PublishedListing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid published listing ID format: %w", repository.ErrNotFound)
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *publishedRepository) FindByPublicationRef(ctx context.Context, ref string) (*entity.PublishedListing, error) {
	return r.findOne(ctx, bson.M{"publication_ref": ref})
}

func (r *publishedRepository) findOne(ctx context.Context, filter bson.M) (*entity.PublishedListing, error) {
	var listing entity.PublishedListing
	err := r.collection.FindOne(ctx, filter).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find published listing: %w", err)
	}
	return &listing, nil
}

// MarkSold transitions active -> sold in one FindOneAndUpdate filtered on
// active status, so racing buyers stamp sold_by at most once.
func (r *publishedRepository) MarkSold(ctx context.Context, id string, soldBy int64) (*entity.PublishedListing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid published listing ID format: %w", repository.ErrNotFound)
	}

	filter := bson.M{"_id": objID, "status": entity.StatusActive}
	update := bson.M{"$set": bson.M{
		"status":  entity.StatusSold,
		"sold_by": soldBy,
		"sold_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing entity.PublishedListing
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err == nil {
		return &listing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to mark listing %s sold: %w", id, err)
	}

	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return existing, repository.ErrAlreadySold
}
