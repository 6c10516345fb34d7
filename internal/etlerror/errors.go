// Package etlerror defines the typed errors the pipeline distinguishes when
// deciding between retry, degrade and abort.
package etlerror

import (
	"errors"
	"fmt"
)

// FetchError reports a transient collaborator failure (completion service or
// historical source unreachable). Fetch errors are retryable.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ResponseFormatError reports that a collaborator answered but with content
// that could not be used (non-JSON, truncated). Not retryable: the batch
// degrades instead.
type ResponseFormatError struct {
	Detail string
	Raw    string
	Err    error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("unusable response: %s: %v", e.Detail, e.Err)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}

// DataIntegrityError reports a missing required field or dataset. Fatal for
// the run: downstream aggregation would be meaningless.
type DataIntegrityError struct {
	Dataset string
	Field   string
	Reason  string
}

func (e *DataIntegrityError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("data integrity failure in %s: field %q: %s", e.Dataset, e.Field, e.Reason)
	}
	return fmt.Sprintf("data integrity failure in %s: %s", e.Dataset, e.Reason)
}

// IsTransient reports whether err is worth retrying. Only fetch failures
// qualify; format and integrity failures will not improve on a second try.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ChunkUploadError reports a persistence failure for one chunk of rows.
// Prior chunks stay committed; the run stops at the failing chunk.
type ChunkUploadError struct {
	Table    string
	Chunk    int
	Rows     int
	DumpFile string
	Err      error
}

func (e *ChunkUploadError) Error() string {
	if e.DumpFile != "" {
		return fmt.Sprintf("upload to %s failed at chunk %d (%d rows, dumped to %s): %v",
			e.Table, e.Chunk, e.Rows, e.DumpFile, e.Err)
	}
	return fmt.Sprintf("upload to %s failed at chunk %d (%d rows): %v", e.Table, e.Chunk, e.Rows, e.Err)
}

func (e *ChunkUploadError) Unwrap() error {
	return e.Err
}
