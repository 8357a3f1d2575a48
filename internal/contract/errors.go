package contract

import (
	"errors"
	"fmt"
)

// ErrProjectNotFound is returned when a commit listing reports zero pages.
var ErrProjectNotFound = errors.New("project not found or has no commits")

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Msg)
}

// FetchError reports a failed page request.
// Status is zero when no HTTP response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyResultError reports that a required collection came back empty.
type EmptyResultError struct {
	Collection string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no %s found", e.Collection)
}

// SelectionError reports that the operator chose nothing.
type SelectionError struct {
	Label string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("no %s selected", e.Label)
}
