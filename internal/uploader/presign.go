package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Target is the ephemeral result of presigning one upload. It is never
// persisted; only the key and public URL survive into the committed record.
type Target struct {
	// WriteURL is a time-limited URL accepting exactly one PUT of the
	// declared content type.
	WriteURL string
	// Key is the durable object key the upload will occupy.
	Key string
	// PublicURL is where the object becomes readable after a successful write.
	PublicURL string
}

// PresignFunc obtains a write target for one candidate file. Implementations
// must not retry internally; retry policy belongs to the coordinator.
type PresignFunc func(ctx context.Context, fileName, contentType, folder string) (*Target, error)

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Folder      string `json:"folder"`
}

type presignResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		UploadURL string `json:"uploadUrl"`
		Key       string `json:"key"`
		PublicURL string `json:"publicUrl"`
	} `json:"data"`
}

// NewHTTPPresign returns a PresignFunc backed by the backend's presign
// endpoint (POST {fileName, contentType, folder} -> {success, data|error}).
func NewHTTPPresign(client *http.Client, endpoint string) PresignFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, fileName, contentType, folder string) (*Target, error) {
		body, err := json.Marshal(presignRequest{
			FileName:    fileName,
			ContentType: contentType,
			Folder:      folder,
		})
		if err != nil {
			return nil, &PresignError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, &PresignError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, &PresignError{Err: err}
		}
		defer resp.Body.Close()

		var pr presignResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&pr); err != nil {
			return nil, &PresignError{Err: fmt.Errorf("malformed response: %w", err)}
		}
		if !pr.Success {
			msg := pr.Error
			if msg == "" {
				msg = fmt.Sprintf("backend returned %s", resp.Status)
			}
			return nil, &PresignError{Err: errors.New(msg)}
		}
		if pr.Data.UploadURL == "" || pr.Data.Key == "" {
			return nil, &PresignError{Err: errors.New("malformed response: missing upload URL or key")}
		}

		return &Target{
			WriteURL:  pr.Data.UploadURL,
			Key:       pr.Data.Key,
			PublicURL: pr.Data.PublicURL,
		}, nil
	}
}
