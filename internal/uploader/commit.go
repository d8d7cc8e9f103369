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

// CommitFunc persists the application-level record for a completed upload.
// It is invoked exactly once per entry, strictly after transfer success;
// an asset record referencing unwritten bytes must never exist.
type CommitFunc func(ctx context.Context, target *Target, src Source) error

type commitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewHTTPCommit returns a CommitFunc that POSTs the ingested-asset JSON to a
// resource-collection endpoint. domainFields (title, category, ordering, ...)
// are merged into the payload alongside the object reference.
func NewHTTPCommit(client *http.Client, endpoint string, domainFields map[string]any) CommitFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, target *Target, src Source) error {
		payload := map[string]any{
			"assetUrl":    target.PublicURL,
			"assetKey":    target.Key,
			"fileName":    src.Name,
			"contentType": src.ContentType,
			"size":        src.Size,
		}
		for k, v := range domainFields {
			payload[k] = v
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return &CommitError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return &CommitError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return &CommitError{Err: err}
		}
		defer resp.Body.Close()

		var cr commitResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&cr); err != nil {
			return &CommitError{Err: fmt.Errorf("malformed response: %w", err)}
		}
		if !cr.Success {
			msg := cr.Error
			if msg == "" {
				msg = fmt.Sprintf("backend returned %s", resp.Status)
			}
			return &CommitError{Err: errors.New(msg)}
		}
		return nil
	}
}
