package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vistudio/studio-cms/internal/domain"
	"vistudio/studio-cms/internal/repository"
)

const assetCollectionName = "assets"

// mongoAssetRepository implements repository.AssetRepository.
type mongoAssetRepository struct {
	collection *mongo.Collection
}

// NewMongoAssetRepository creates a new asset repository backed by MongoDB.
func NewMongoAssetRepository(db *mongo.Database) repository.AssetRepository {
	return &mongoAssetRepository{
		collection: db.Collection(assetCollectionName),
	}
}

// Create inserts a new asset record. The caller is responsible for only
// creating records whose object bytes already exist in storage.
func (r *mongoAssetRepository) Create(ctx context.Context, asset *domain.Asset) (primitive.ObjectID, error) {
	if asset.AssetKey == "" || asset.AssetURL == "" {
		return primitive.NilObjectID, errors.New("asset requires assetKey and assetUrl")
	}
	if !asset.Collection.Valid() {
		return primitive.NilObjectID, errors.New("asset requires a valid collection")
	}

	asset.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, asset)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves one asset record by its ID.
func (r *mongoAssetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListByCollection retrieves all assets of one collection, ordered for
// display (sortOrder ascending, newest first within the same order).
func (r *mongoAssetRepository) ListByCollection(ctx context.Context, collection domain.Collection, activeOnly bool) ([]domain.Asset, error) {
	filter := bson.M{"collection": collection}
	if activeOnly {
		filter["active"] = true
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "sortOrder", Value: 1},
		{Key: "createdAt", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assets := []domain.Asset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Update applies the non-nil fields of the update and returns the new record.
func (r *mongoAssetRepository) Update(ctx context.Context, id primitive.ObjectID, update repository.AssetUpdate) (*domain.Asset, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.SortOrder != nil {
		set["sortOrder"] = *update.SortOrder
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var asset domain.Asset
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// Delete removes one asset record.
func (r *mongoAssetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssetIndexes creates the indexes the asset queries rely on.
func EnsureAssetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Display listing per admin screen
			Keys: bson.D{
				{Key: "collection", Value: 1},
				{Key: "sortOrder", Value: 1},
			},
			Options: options.Index(),
		},
		{
			// One record per stored object
			Keys:    bson.D{{Key: "assetKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
