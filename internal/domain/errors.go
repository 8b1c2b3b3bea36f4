package domain

import "fmt"

// PreconditionError reports a batch operation attempted from a state that
// does not permit it. The required state is named so callers can see what
// was expected.
type PreconditionError struct {
	Op       string
	Current  string
	Required string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s (requires %s)", e.Op, e.Current, e.Required)
}

// StorageError wraps a persistence failure during ingest. The transaction is
// rolled back before this surfaces; persisted state is unchanged and the
// caller may retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FileParseError marks a file that could not be parsed at all. It is
// reported as a synthetic validation issue for that file; the rest of the
// batch keeps processing.
type FileParseError struct {
	Filename string
	Err      error
}

func (e *FileParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Filename, e.Err)
}

func (e *FileParseError) Unwrap() error { return e.Err }
