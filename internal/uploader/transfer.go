package uploader

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ProgressFunc receives byte-level progress of one transfer. Calls are
// monotonic within a single transfer: sent never decreases.
type ProgressFunc func(sent, total int64)

// progressReader counts bytes as the transport consumes the request body,
// so progress is driven by actual reads rather than polling.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}

// Transfer performs the single streamed PUT of the source's full byte content
// to the presigned write URL. The file's declared content type is sent as the
// request's Content-Type so the storage backend serves it correctly on read.
//
// The body is streamed, never buffered whole: source videos can run to
// hundreds of MB and the presigned write is exactly how they bypass the
// application server's body-size limits.
//
// There is no retry here. Cancellation, network failure and non-success
// statuses all surface as a *TransferError.
func Transfer(ctx context.Context, client *http.Client, src Source, writeURL string, onProgress ProgressFunc) error {
	if client == nil {
		client = http.DefaultClient
	}

	rc, err := src.Open()
	if err != nil {
		return &TransferError{Err: fmt.Errorf("open source: %w", err)}
	}
	defer rc.Close()

	body := &progressReader{r: rc, total: src.Size, onProgress: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, writeURL, body)
	if err != nil {
		return &TransferError{Err: err}
	}
	// ContentLength must be set explicitly for a streamed body, otherwise the
	// transport falls back to chunked encoding which S3 presigned PUTs reject.
	req.ContentLength = src.Size
	req.Header.Set("Content-Type", src.ContentType)

	resp, err := client.Do(req)
	if err != nil {
		return &TransferError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransferError{Err: fmt.Errorf("storage returned %s", resp.Status)}
	}

	if onProgress != nil {
		onProgress(src.Size, src.Size)
	}
	return nil
}
