package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound means the page no longer has the expected table layout.
	ErrTableNotFound = errors.New("case table not found")

	// ErrUnresolvedDate means a date fragment could not be qualified to a full date.
	ErrUnresolvedDate = errors.New("unresolved report date")
)

// FetchError reports a failed retrieval of a source's case table.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
