package uploader

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memSource(name, contentType string, data []byte) Source {
	return Source{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type countingPreview struct {
	releases int
}

func (p *countingPreview) Release() { p.releases++ }

func TestEntry_InitialState(t *testing.T) {
	e := newEntry(memSource("a.jpg", "image/jpeg", []byte("x")), nil)

	s := e.Snapshot()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, 0, s.Progress)
	assert.Empty(t, s.Err)
}

func TestEntry_TransitionMatrix(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"pending to uploading", StatusPending, StatusUploading, true},
		{"uploading to done", StatusUploading, StatusDone, true},
		{"uploading to error", StatusUploading, StatusError, true},
		{"error to pending (retry)", StatusError, StatusPending, true},
		{"pending to done", StatusPending, StatusDone, false},
		{"pending to error", StatusPending, StatusError, false},
		{"done is terminal", StatusDone, StatusUploading, false},
		{"error to done", StatusError, StatusDone, false},
		{"uploading to pending", StatusUploading, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry(memSource("a.jpg", "image/jpeg", nil), nil)
			e.status = tt.from

			err := e.transition(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, e.Snapshot().Status)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.from, e.Snapshot().Status)
			}
		})
	}
}

func TestEntry_DoneForcesFullProgress(t *testing.T) {
	e := newEntry(memSource("a.jpg", "image/jpeg", nil), nil)
	require.NoError(t, e.transition(StatusUploading))
	e.setProgress(42)

	require.NoError(t, e.transition(StatusDone))
	assert.Equal(t, 100, e.Snapshot().Progress)
}

func TestEntry_ProgressMonotonic(t *testing.T) {
	e := newEntry(memSource("a.jpg", "image/jpeg", nil), nil)
	require.NoError(t, e.transition(StatusUploading))

	e.setProgress(30)
	e.setProgress(10) // a late callback must not move the bar backwards
	assert.Equal(t, 30, e.Snapshot().Progress)

	e.setProgress(250)
	assert.Equal(t, 100, e.Snapshot().Progress)
}

func TestEntry_ProgressIgnoredOutsideUploading(t *testing.T) {
	e := newEntry(memSource("a.jpg", "image/jpeg", nil), nil)
	e.setProgress(50)
	assert.Equal(t, 0, e.Snapshot().Progress)
}

func TestEntry_FailOnlyFromUploading(t *testing.T) {
	e := newEntry(memSource("a.jpg", "image/jpeg", nil), nil)

	e.fail(errors.New("boom"))
	assert.Equal(t, StatusPending, e.Snapshot().Status)

	require.NoError(t, e.transition(StatusUploading))
	e.fail(errors.New("boom"))

	s := e.Snapshot()
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "boom", s.Err)
}

func TestEntry_RetryClearsResidue(t *testing.T) {
	e := newEntry(memSource("a.jpg", "image/jpeg", nil), nil)
	require.NoError(t, e.transition(StatusUploading))
	e.setTarget(&Target{Key: "k"})
	e.setProgress(77)
	e.fail(errors.New("boom"))

	require.NoError(t, e.transition(StatusPending))

	s := e.Snapshot()
	assert.Equal(t, 0, s.Progress)
	assert.Empty(t, s.Err)
	assert.Nil(t, e.target)
}

func TestEntry_PreviewReleasedExactlyOnce(t *testing.T) {
	p := &countingPreview{}
	e := newEntry(memSource("a.jpg", "image/jpeg", nil), p)

	e.releasePreview()
	e.releasePreview()

	assert.Equal(t, 1, p.releases)
}
