package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vistudio/studio-cms/internal/domain"
	"vistudio/studio-cms/internal/repository"
	"vistudio/studio-cms/internal/storage"
)

// Service-level error variables
var (
	ErrFolderNotAllowed = errors.New("folder is not in the allowed list")
	ErrTypeNotAllowed   = errors.New("content type is not allowed for upload")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPresignFailed    = errors.New("failed to generate upload URL")
)

// UploadTarget is the presign result handed to the uploading client.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

// MediaService issues presigned upload targets and manages the asset records
// committed after a successful direct upload.
type MediaService interface {
	// IssueUploadTarget reserves an object key under folder and returns a
	// short-lived write URL plus the durable public URL for it.
	IssueUploadTarget(ctx context.Context, fileName, contentType, folder string) (*UploadTarget, error)

	// CommitAsset persists the record for an upload whose bytes are already
	// in storage. Returns the stored record.
	CommitAsset(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)

	ListAssets(ctx context.Context, collection domain.Collection, activeOnly bool) ([]domain.Asset, error)
	UpdateAsset(ctx context.Context, id primitive.ObjectID, update repository.AssetUpdate) (*domain.Asset, error)

	// DeleteAsset removes the record and, best effort, the stored object.
	DeleteAsset(ctx context.Context, id primitive.ObjectID) error
}

type mediaService struct {
	assetRepo      repository.AssetRepository
	fileStorage    storage.FileStorage
	allowedFolders []string
	presignExpiry  time.Duration
}

// NewMediaService creates a new instance of mediaService.
func NewMediaService(
	assetRepo repository.AssetRepository,
	fileStorage storage.FileStorage,
	allowedFolders []string,
	presignExpiry time.Duration,
) MediaService {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &mediaService{
		assetRepo:      assetRepo,
		fileStorage:    fileStorage,
		allowedFolders: allowedFolders,
		presignExpiry:  presignExpiry,
	}
}

// IssueUploadTarget validates the request and presigns a write URL for it.
// The key is reserved server-side (uuid under the requested folder) so a
// client can never choose or overwrite arbitrary keys.
func (s *mediaService) IssueUploadTarget(ctx context.Context, fileName, contentType, folder string) (*UploadTarget, error) {
	if fileName == "" || contentType == "" || folder == "" {
		return nil, ErrInvalidInput
	}

	ct := strings.ToLower(contentType)
	if !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "video/") {
		return nil, ErrTypeNotAllowed
	}

	if !s.folderAllowed(folder) {
		return nil, ErrFolderNotAllowed
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	objectKey := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, s.presignExpiry)
	if err != nil {
		log.Printf("ERROR: presign failed for key '%s': %v", objectKey, err)
		return nil, ErrPresignFailed
	}

	return &UploadTarget{
		UploadURL: uploadURL,
		Key:       objectKey,
		PublicURL: s.fileStorage.PublicURL(objectKey),
	}, nil
}

func (s *mediaService) folderAllowed(folder string) bool {
	for _, f := range s.allowedFolders {
		if folder == f {
			return true
		}
	}
	return false
}

// CommitAsset persists the asset record. This is the commit step of the
// pipeline: it must only ever be called after the object bytes were written,
// which is the uploading client's responsibility to sequence.
func (s *mediaService) CommitAsset(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if asset.AssetKey == "" || asset.AssetURL == "" {
		return nil, ErrInvalidInput
	}
	if !asset.Collection.Valid() {
		return nil, ErrInvalidInput
	}

	id, err := s.assetRepo.Create(ctx, asset)
	if err != nil {
		return nil, err
	}

	created, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *mediaService) ListAssets(ctx context.Context, collection domain.Collection, activeOnly bool) ([]domain.Asset, error) {
	if !collection.Valid() {
		return nil, ErrInvalidInput
	}
	return s.assetRepo.ListByCollection(ctx, collection, activeOnly)
}

func (s *mediaService) UpdateAsset(ctx context.Context, id primitive.ObjectID, update repository.AssetUpdate) (*domain.Asset, error) {
	asset, err := s.assetRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// DeleteAsset removes the record first, then the stored object. A failed
// object delete leaves an orphan in the bucket, which is accepted; it never
// resurrects the record.
func (s *mediaService) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssetNotFound
		}
		return err
	}

	if err := s.assetRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssetNotFound
		}
		return err
	}

	if err := s.fileStorage.DeleteObject(ctx, asset.AssetKey); err != nil {
		log.Printf("WARN: asset %s deleted but object '%s' removal failed: %v", id.Hex(), asset.AssetKey, err)
	}
	return nil
}
