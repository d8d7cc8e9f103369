package uploader

import "fmt"

// The pipeline distinguishes four failure classes. All of them are caught at
// the per-entry boundary and recorded on that entry alone; none of them
// escapes to sibling entries or to the batch control flow.

// ValidationError reports a candidate file rejected before any FileEntry was
// created, e.g. because its MIME type is not in the batch allowlist.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file %q rejected: %s", e.FileName, e.Reason)
}

// PresignError reports that the backend refused or failed to issue a write
// target for the file.
type PresignError struct {
	Err error
}

func (e *PresignError) Error() string { return "presign: " + e.Err.Error() }
func (e *PresignError) Unwrap() error { return e.Err }

// TransferError reports a failed write to the presigned URL: network failure,
// abort/timeout, or a non-success status from the storage backend.
type TransferError struct {
	Err error
}

func (e *TransferError) Error() string { return "transfer: " + e.Err.Error() }
func (e *TransferError) Unwrap() error { return e.Err }

// CommitError reports that metadata persistence failed after the object bytes
// were already written. The stored object is orphaned in that case; cleaning
// orphans up is an out-of-band concern, not the pipeline's.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string { return "commit: " + e.Err.Error() }
func (e *CommitError) Unwrap() error { return e.Err }
