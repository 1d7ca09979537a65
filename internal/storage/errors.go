package storage

import "github.com/pkg/errors"

// Storage error sentinels, per spec.md §7. The REPL treats a
// *DuplicateKeyError (and its own parse errors) as non-fatal, reporting it
// and continuing; every other error, including ErrCorruptFile,
// ErrOutOfPages and ErrSplitInternalUnimplemented, ends the session.
var (
	// ErrCorruptFile is returned when the backing file's length is not a
	// multiple of PageSize, or a page read comes back short.
	ErrCorruptFile = errors.New("corrupt database file")

	// ErrOutOfPages is returned when a page number is MaxPages or more.
	ErrOutOfPages = errors.New("page index exceeds cache capacity")

	// ErrSplitInternalUnimplemented is returned when an internal node
	// insert would need to split the internal node itself. The engine
	// deliberately does not implement this (spec.md §1 Non-goals).
	ErrSplitInternalUnimplemented = errors.New("need to implement splitting internal node")

	// ErrDuplicateKey wraps a duplicate-key insert failure. Use
	// NewDuplicateKeyError to build one with the offending key attached.
	ErrDuplicateKey = errors.New("duplicate key")
)

// DuplicateKeyError reports that an insert collided with an existing key.
type DuplicateKeyError struct {
	Key uint32
}

func (e *DuplicateKeyError) Error() string {
	return errors.Errorf("duplicate key '%d'", e.Key).Error()
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// NewDuplicateKeyError builds a DuplicateKeyError for key.
func NewDuplicateKeyError(key uint32) error {
	return &DuplicateKeyError{Key: key}
}
