package binary

import (
	"errors"
	"fmt"
)

const (
	// ToolName is the name of the wrapped executable and the prefix of every
	// release asset.
	ToolName = "cyclonedx-gomod"

	// DefaultBaseURL is the release download root. Assets live under
	// {DefaultBaseURL}/v{version}/.
	DefaultBaseURL = "https://github.com/CycloneDX/cyclonedx-gomod/releases/download"

	// ExtZip and ExtTarGz are the two archive formats published per release.
	ExtZip   = "zip"
	ExtTarGz = "tar.gz"
)

var (
	// ErrDownload is returned for any transport or HTTP failure while
	// fetching release assets.
	ErrDownload = errors.New("download failed")
	// ErrExtraction is returned when an archive cannot be unpacked.
	ErrExtraction = errors.New("extraction failed")
	// ErrVerification is returned when an archive does not match its
	// published checksum or the checksum file's signature is invalid.
	ErrVerification = errors.New("verification failed")
	// ErrMissingExecutable is returned when the extracted archive does not
	// contain the expected executable.
	ErrMissingExecutable = errors.New("executable not found in archive")
)

// ArchiveDescriptor identifies the release archive for one version on one
// host. It is derived, never stored.
type ArchiveDescriptor struct {
	Version      string // numeric version, no leading "v"
	Platform     string // normalized platform, e.g. "windows"
	Arch         string // normalized architecture, e.g. "x86"
	Extension    string // ExtZip or ExtTarGz
	FileName     string // e.g. cyclonedx-gomod_1.4.0_linux_x64.tar.gz
	URL          string
	ChecksumsURL string
	SignatureURL string // detached signature over the checksums file
}

// ExecutableName returns the executable file name inside the archive.
func (d ArchiveDescriptor) ExecutableName() string {
	if d.Platform == "windows" {
		return ToolName + ".exe"
	}
	return ToolName
}

// StatusError reports a non-200 HTTP response for a download.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.StatusCode, e.URL)
}
