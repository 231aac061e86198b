package release

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a version specifier is neither
	// "latest" nor a parseable semantic-version range.
	ErrInvalidRange = errors.New("invalid version range")
	// ErrNotFound is returned when the release index reports that no
	// releases exist.
	ErrNotFound = errors.New("no releases found")
	// ErrUnexpectedStatus matches any *UnexpectedStatusError.
	ErrUnexpectedStatus = errors.New("unexpected response from release index")
	// ErrNoMatch is returned when no published release satisfies a range.
	ErrNoMatch = errors.New("no release satisfies version range")
	// ErrUnsupportedVersion is returned when the resolved release is below
	// the minimum supported version.
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// UnexpectedStatusError reports a non-success, non-404 response from the
// release index.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
	Message    string // "message" field of the API error body, if any
}

func (e *UnexpectedStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d from %s: %s", ErrUnexpectedStatus, e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d from %s", ErrUnexpectedStatus, e.StatusCode, e.URL)
}

// Is reports whether target is ErrUnexpectedStatus.
func (e *UnexpectedStatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
