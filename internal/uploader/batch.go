// Package uploader is the direct-to-object-storage upload pipeline shared by
// every admin screen: it turns a set of local files into durably stored
// objects plus committed asset records, with per-file progress, bounded
// concurrency and strict failure isolation between files.
//
// The flow per entry is presign -> streamed PUT -> metadata commit. The web
// server never sees the bytes; it only issues the presigned write URL and
// persists the record afterwards.
package uploader

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Progress weights: each entry's 0-100 range is split into fixed slices so
// the bar moves through presign, transfer and commit without jumping back.
// Commit owns the remainder up to 100.
const (
	presignWeight  = 10
	transferWeight = 80
)

const (
	defaultMaxConcurrent   = 4
	defaultTransferTimeout = 15 * time.Minute
)

// File is one candidate for ingestion: the byte source plus an optional
// preview handle that the batch will release when the entry is discarded.
type File struct {
	Source  Source
	Preview Preview
}

// Options configure a Batch.
type Options struct {
	// Folder is the logical storage folder requested from the presign backend.
	Folder string

	// AllowedTypes is the MIME allowlist applied at selection time. Entries
	// are either exact types ("video/mp4") or prefixes ending in a slash
	// ("image/"). Empty means everything is accepted.
	AllowedTypes []string

	Presign PresignFunc
	Commit  CommitFunc

	// HTTPClient is used for the PUT transfers. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// MaxConcurrent caps how many entries are in flight at once. Default 4.
	MaxConcurrent int64

	// TransferTimeout bounds one entry's whole pipeline pass. An expired
	// deadline surfaces on the entry as a transfer error. Default 15m.
	TransferTimeout time.Duration

	// OnChange, when set, is invoked with a snapshot after every observable
	// entry change. Called from pipeline goroutines; must not block.
	OnChange func(Snapshot)
}

// Aggregate is the derived, display-only view of a batch. It is computed
// from entry snapshots and is never authoritative over individual entries.
type Aggregate struct {
	Total     int
	Pending   int
	Uploading int
	Done      int
	Failed    int
	// Percent is the mean per-entry progress across the batch, 100 only
	// when every entry is done.
	Percent int
}

// Result is returned by UploadAll once every dispatched entry is terminal.
type Result struct {
	Done   int
	Failed int
}

// Batch owns a set of FileEntries for their whole lifetime and coordinates
// their ingestion. No other component mutates entry state.
type Batch struct {
	mu      sync.Mutex
	opts    Options
	entries []*Entry
}

// NewBatch creates an empty batch for one admin screen's uploads.
func NewBatch(opts Options) (*Batch, error) {
	if opts.Presign == nil {
		return nil, errors.New("uploader: Options.Presign is required")
	}
	if opts.Commit == nil {
		return nil, errors.New("uploader: Options.Commit is required")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.TransferTimeout <= 0 {
		opts.TransferTimeout = defaultTransferTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Batch{opts: opts}, nil
}

// AddFiles filters the candidates through the MIME allowlist and creates one
// pending entry per accepted file. Rejected files never become entries; their
// ValidationErrors are returned so the caller can tell the user why a
// selected file is missing instead of dropping it silently.
func (b *Batch) AddFiles(files ...File) (added []Snapshot, rejected []*ValidationError) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range files {
		if !b.typeAllowed(f.Source.ContentType) {
			if f.Preview != nil {
				f.Preview.Release()
			}
			rejected = append(rejected, &ValidationError{
				FileName: f.Source.Name,
				Reason:   "content type " + f.Source.ContentType + " is not allowed",
			})
			continue
		}
		e := newEntry(f.Source, f.Preview)
		b.entries = append(b.entries, e)
		added = append(added, e.Snapshot())
	}
	return added, rejected
}

func (b *Batch) typeAllowed(contentType string) bool {
	if len(b.opts.AllowedTypes) == 0 {
		return true
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range b.opts.AllowedTypes {
		t = strings.ToLower(t)
		if strings.HasSuffix(t, "/") {
			if strings.HasPrefix(ct, t) {
				return true
			}
		} else if ct == t {
			return true
		}
	}
	return false
}

// Remove discards an entry and releases its preview. Only pending, failed and
// done entries can be removed; an uploading entry has to reach a terminal
// state first. Removing an unknown id is a no-op, not an error.
func (b *Batch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.ID() != id {
			continue
		}
		if e.Snapshot().Status == StatusUploading {
			return false
		}
		e.releasePreview()
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		return true
	}
	return false
}

// Retry returns a failed entry to pending so the next UploadAll picks it up
// again. Returns false if the entry does not exist or is not in error.
func (b *Batch) Retry(id string) bool {
	b.mu.Lock()
	e := b.find(id)
	b.mu.Unlock()
	if e == nil {
		return false
	}
	if err := e.transition(StatusPending); err != nil {
		return false
	}
	b.observe(e)
	return true
}

func (b *Batch) find(id string) *Entry {
	for _, e := range b.entries {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

// Entries returns snapshots of every entry, in selection order.
func (b *Batch) Entries() []Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Snapshot, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Snapshot()
	}
	return out
}

// Progress returns the derived composite view of the batch.
func (b *Batch) Progress() Aggregate {
	var agg Aggregate
	var sum int
	for _, s := range b.Entries() {
		agg.Total++
		sum += s.Progress
		switch s.Status {
		case StatusPending:
			agg.Pending++
		case StatusUploading:
			agg.Uploading++
		case StatusDone:
			agg.Done++
		case StatusError:
			agg.Failed++
		}
	}
	if agg.Total > 0 {
		agg.Percent = sum / agg.Total
	}
	return agg
}

// UploadAll dispatches every currently pending entry through the per-entry
// pipeline and returns once all of them are terminal. Dispatch is concurrent,
// bounded by MaxConcurrent, with no ordering guarantee between entries.
//
// One entry's failure never aborts or rolls back a sibling; the join waits
// for failed entries the same as for successful ones. Cancelling ctx resolves
// in-flight and queued entries to error — an entry is never left dangling in
// uploading.
func (b *Batch) UploadAll(ctx context.Context) Result {
	b.mu.Lock()
	var dispatched []*Entry
	for _, e := range b.entries {
		if e.Snapshot().Status == StatusPending {
			dispatched = append(dispatched, e)
		}
	}
	b.mu.Unlock()

	sem := semaphore.NewWeighted(b.opts.MaxConcurrent)
	var wg sync.WaitGroup
	for _, e := range dispatched {
		wg.Add(1)
		go func(e *Entry) {
			defer wg.Done()

			// Dispatched means uploading: a queued entry waiting for a
			// semaphore slot can no longer be removed from the batch.
			if err := e.transition(StatusUploading); err != nil {
				return
			}
			b.observe(e)

			if err := sem.Acquire(ctx, 1); err != nil {
				e.fail(&TransferError{Err: err})
				b.observe(e)
				return
			}
			defer sem.Release(1)

			b.process(ctx, e)
		}(e)
	}
	wg.Wait()

	var res Result
	for _, e := range dispatched {
		switch e.Snapshot().Status {
		case StatusDone:
			res.Done++
		case StatusError:
			res.Failed++
		}
	}
	return res
}

// process runs one entry's presign -> transfer -> commit pass. The entry is
// already in uploading; every exit path leaves it terminal.
func (b *Batch) process(ctx context.Context, e *Entry) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.TransferTimeout)
	defer cancel()

	target, err := b.opts.Presign(ctx, e.source.Name, e.source.ContentType, b.opts.Folder)
	if err != nil {
		e.fail(err)
		b.observe(e)
		return
	}
	e.setTarget(target)
	e.setProgress(presignWeight)
	b.observe(e)

	err = Transfer(ctx, b.opts.HTTPClient, e.source, target.WriteURL, func(sent, total int64) {
		p := presignWeight
		if total > 0 {
			p += int(float64(sent) / float64(total) * transferWeight)
		}
		e.setProgress(p)
		b.observe(e)
	})
	if err != nil {
		e.fail(err)
		b.observe(e)
		return
	}
	e.setProgress(presignWeight + transferWeight)
	b.observe(e)

	if err := b.opts.Commit(ctx, target, e.source); err != nil {
		// The object bytes exist in storage at this point; the orphan is
		// accepted and the entry still fails.
		e.fail(err)
		b.observe(e)
		return
	}

	_ = e.transition(StatusDone)
	b.observe(e)
}

func (b *Batch) observe(e *Entry) {
	if b.opts.OnChange != nil {
		b.opts.OnChange(e.Snapshot())
	}
}
