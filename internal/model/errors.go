package model

import "errors"

// Parse failures surfaced by source parsers. Both are fatal to an import;
// re-parsing the same bytes fails the same way, so they are never retried.
var (
	// ErrFormat indicates the raw data did not match any known source format.
	ErrFormat = errors.New("unrecognized source format")
	// ErrEmpty indicates the data parsed cleanly but contained no transactions.
	ErrEmpty = errors.New("no transactions parsed")
)

// ValidationError reports structurally invalid caller input, such as an
// empty transaction batch or an invalid filter pattern.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// NotFoundError reports a reference to an entity that does not exist.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found: " + e.Name }
