package uploader

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a FileEntry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// validTransitions is the matrix of allowed status changes.
// Key is the current status, value the set of statuses reachable from it.
var validTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusUploading: true},
	StatusUploading: {StatusDone: true, StatusError: true},
	StatusError:     {StatusPending: true}, // user-initiated retry
	StatusDone:      {},                    // terminal
}

// Source is a handle to one local file's bytes plus its declared name and
// content type. A Source is never mutated after the entry is created.
type Source struct {
	Name        string
	ContentType string
	Size        int64

	// Open returns a fresh reader over the full byte content.
	// Called once per upload attempt.
	Open func() (io.ReadCloser, error)
}

// Preview is a revocable local handle usable to render the file before any
// network activity happens (a temp thumbnail, a decoded image, ...).
// The owning entry guarantees Release is called exactly once.
type Preview interface {
	Release()
}

// Snapshot is the externally observable state of one entry. Handed out by
// value so observers can never mutate pipeline state.
type Snapshot struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
	Status      Status
	Progress    int
	Err         string
}

// Entry tracks one selected file from selection through upload through
// metadata commit. All mutation goes through the owning Batch; the entry
// itself only enforces its own state machine.
type Entry struct {
	mu sync.Mutex

	id      string
	source  Source
	preview Preview
	release sync.Once

	status    Status
	progress  int
	errDetail string

	// Set after a successful presign; the committer needs it later.
	target *Target
}

func newEntry(src Source, preview Preview) *Entry {
	return &Entry{
		id:      uuid.NewString(),
		source:  src,
		preview: preview,
		status:  StatusPending,
	}
}

// ID returns the batch-unique identifier of this entry.
func (e *Entry) ID() string { return e.id }

// Snapshot returns a copy of the current observable state.
func (e *Entry) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		ID:          e.id,
		FileName:    e.source.Name,
		ContentType: e.source.ContentType,
		Size:        e.source.Size,
		Status:      e.status,
		Progress:    e.progress,
		Err:         e.errDetail,
	}
}

// transition moves the entry to a new status, enforcing the transition matrix.
func (e *Entry) transition(to Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !validTransitions[e.status][to] {
		return fmt.Errorf("invalid status transition %s -> %s", e.status, to)
	}
	e.status = to
	switch to {
	case StatusPending: // retry: wipe the previous attempt's residue
		e.progress = 0
		e.errDetail = ""
		e.target = nil
	case StatusUploading:
		e.progress = 0
		e.errDetail = ""
	case StatusDone:
		e.progress = 100
	}
	return nil
}

// setProgress records progress while the entry is uploading. Progress is
// clamped to [current, 100] so a late or out-of-order callback can never make
// the value go backwards.
func (e *Entry) setProgress(p int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusUploading {
		return
	}
	if p > 100 {
		p = 100
	}
	if p > e.progress {
		e.progress = p
	}
}

// fail moves an uploading entry to its terminal error state with the cause
// attached. Calling it in any other state is a no-op.
func (e *Entry) fail(cause error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !validTransitions[e.status][StatusError] {
		return
	}
	e.status = StatusError
	e.errDetail = cause.Error()
}

func (e *Entry) setTarget(t *Target) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = t
}

// releasePreview frees the preview handle. Safe to call more than once;
// the handle itself is released exactly once.
func (e *Entry) releasePreview() {
	e.release.Do(func() {
		if e.preview != nil {
			e.preview.Release()
		}
	})
}
