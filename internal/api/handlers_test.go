package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vistudio/studio-cms/internal/domain"
	"vistudio/studio-cms/internal/repository"
	"vistudio/studio-cms/internal/service"
)

// fakeMediaService satisfies service.MediaService with canned behavior.
type fakeMediaService struct {
	presignErr error
	assets     map[primitive.ObjectID]*domain.Asset
}

func newFakeMediaService() *fakeMediaService {
	return &fakeMediaService{assets: map[primitive.ObjectID]*domain.Asset{}}
}

func (f *fakeMediaService) IssueUploadTarget(ctx context.Context, fileName, contentType, folder string) (*service.UploadTarget, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return &service.UploadTarget{
		UploadURL: "https://signed.example/" + folder + "/" + fileName,
		Key:       folder + "/" + fileName,
		PublicURL: "https://cdn.example/" + folder + "/" + fileName,
	}, nil
}

func (f *fakeMediaService) CommitAsset(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	asset.ID = primitive.NewObjectID()
	asset.CreatedAt = time.Now().UTC()
	asset.UpdatedAt = asset.CreatedAt
	f.assets[asset.ID] = asset
	return asset, nil
}

func (f *fakeMediaService) ListAssets(ctx context.Context, collection domain.Collection, activeOnly bool) ([]domain.Asset, error) {
	var out []domain.Asset
	for _, a := range f.assets {
		if a.Collection == collection {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeMediaService) UpdateAsset(ctx context.Context, id primitive.ObjectID, update repository.AssetUpdate) (*domain.Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return nil, service.ErrAssetNotFound
	}
	if update.Title != nil {
		a.Title = *update.Title
	}
	return a, nil
}

func (f *fakeMediaService) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.assets[id]; !ok {
		return service.ErrAssetNotFound
	}
	delete(f.assets, id)
	return nil
}

func newTestRouter(svc service.MediaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, svc)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestPresignEndpoint_Success(t *testing.T) {
	router := newTestRouter(newFakeMediaService())

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/media/presign", gin.H{
		"fileName":    "clip.mp4",
		"contentType": "video/mp4",
		"folder":      "reels",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var target service.UploadTarget
	require.NoError(t, json.Unmarshal(env.Data, &target))
	assert.Equal(t, "reels/clip.mp4", target.Key)
	assert.NotEmpty(t, target.UploadURL)
	assert.NotEmpty(t, target.PublicURL)
}

func TestPresignEndpoint_MissingFields(t *testing.T) {
	router := newTestRouter(newFakeMediaService())

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/media/presign", gin.H{
		"fileName": "clip.mp4",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestPresignEndpoint_ServiceRejection(t *testing.T) {
	svc := newFakeMediaService()
	svc.presignErr = service.ErrFolderNotAllowed
	router := newTestRouter(svc)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/media/presign", gin.H{
		"fileName":    "clip.mp4",
		"contentType": "video/mp4",
		"folder":      "secrets",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "not in the allowed list")
}

func TestCommitEndpoint_CreatesAsset(t *testing.T) {
	svc := newFakeMediaService()
	router := newTestRouter(svc)

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/assets/portfolio", gin.H{
		"assetUrl": "https://cdn.example/portfolio/x.jpg",
		"assetKey": "portfolio/x.jpg",
		"fileName": "x.jpg",
		"title":    "Opening shot",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	var resp AssetResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "portfolio", resp.Collection)
	assert.Equal(t, "Opening shot", resp.Title)
	assert.True(t, resp.Active, "active defaults to true")
	assert.Len(t, svc.assets, 1)
}

func TestCommitEndpoint_UnknownCollection(t *testing.T) {
	router := newTestRouter(newFakeMediaService())

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/assets/wallpapers", gin.H{
		"assetUrl": "https://cdn.example/x.jpg",
		"assetKey": "x.jpg",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateEndpoint_NotFound(t *testing.T) {
	router := newTestRouter(newFakeMediaService())

	w, _ := doJSON(t, router, http.MethodPatch,
		"/api/v1/assets/reels/"+primitive.NewObjectID().Hex(), gin.H{"title": "x"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEndpoint_RoundTrip(t *testing.T) {
	svc := newFakeMediaService()
	router := newTestRouter(svc)

	created, err := svc.CommitAsset(context.Background(), &domain.Asset{
		Collection: domain.CollectionTeam,
		AssetURL:   "https://cdn.example/team/p.jpg",
		AssetKey:   "team/p.jpg",
	})
	require.NoError(t, err)

	w, env := doJSON(t, router, http.MethodDelete, "/api/v1/assets/team/"+created.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/v1/assets/team/"+created.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEndpoint_InvalidID(t *testing.T) {
	router := newTestRouter(newFakeMediaService())

	w, _ := doJSON(t, router, http.MethodPatch, "/api/v1/assets/reels/not-an-id", gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
