package config

import (
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/cyclonedx"
)

var (
	// ErrMissingInput is returned when a required input has no value.
	ErrMissingInput = errors.New("input required and not supplied")
	// ErrInvalidInput is returned when an input value cannot be parsed.
	ErrInvalidInput = errors.New("invalid input")
)

// Inputs is the resolved configuration for one run.
type Inputs struct {
	// Version is the version specifier: "latest" or a semver range.
	Version string
	// SBOM holds the cyclonedx-gomod options.
	SBOM cyclonedx.Options

	GitHubToken     string
	APIURL          string // GitHub API root, empty for api.github.com
	VerifyChecksums bool
	SigningKey      string // path to an armored OpenPGP public key
	DownloadRetries int
	ConfigFile      string

	// TempRoot is the parent of the per-run work directory.
	TempRoot string
}

// ValidationError reports a bad input value.
type ValidationError struct {
	Field   string
	Message string
	Err     error // ErrMissingInput or ErrInvalidInput
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

// Unwrap returns the sentinel the error belongs to.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseError represents a config file error with a friendly message.
type ParseError struct {
	Message string // user-friendly message
	Detail  string // raw Lua error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}
