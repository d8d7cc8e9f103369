package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vistudio/studio-cms/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AssetUpdate carries the mutable domain fields of an asset. Nil pointers
// leave the stored value untouched.
type AssetUpdate struct {
	Title     *string
	Category  *string
	SortOrder *int
	Active    *bool
}

// AssetRepository defines the interface for interacting with asset records.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Asset, error)
	ListByCollection(ctx context.Context, collection domain.Collection, activeOnly bool) ([]domain.Asset, error)
	Update(ctx context.Context, id primitive.ObjectID, update AssetUpdate) (*domain.Asset, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
