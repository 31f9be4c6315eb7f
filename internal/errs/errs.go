package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrNoPresets   = errors.New("no presets loaded")
	ErrNoMatch     = errors.New("no preset matches the query")
	ErrUnknownRole = errors.New("unknown role")
)

// SourceError represents a failure to parse one source document. Failures
// are isolated per file: the loader collects them and keeps going.
type SourceError struct {
	Path  string
	Cause error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewSourceError creates a SourceError.
func NewSourceError(path string, cause error) *SourceError {
	return &SourceError{Path: path, Cause: cause}
}
