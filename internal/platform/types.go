// Package platform describes the host a run executes on.
//
// Host facts are expressed in the vocabulary used by release archive names:
// platform names such as "win32", "linux" and "darwin", and architecture
// names such as "x64", "ia32" and "arm64". The artifact namer in package
// binary normalizes these into the final archive file name.
package platform

import "context"

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Host platform names.
const (
	OSWindows = "win32"
	OSLinux   = "linux"
	OSDarwin  = "darwin"
)

// Info is the host descriptor for a run. It is derived once and never mutated.
type Info struct {
	OS     string // release platform name: "win32", "linux", "darwin", ...
	Arch   string // release architecture name: "x64", "ia32", "arm64", ...
	GOOS   string // runtime.GOOS
	GOARCH string // runtime.GOARCH

	DistroID      string // Linux only, e.g. "ubuntu"
	Family        string // Linux only, canonical family
	DistroVersion string // Linux only, e.g. "22.04"
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information, or nil when not on Linux or when
// detection failed.
func (i *Info) GetDistro() *Distro {
	if !i.IsLinux() || i.DistroID == "" {
		return nil
	}
	return &Distro{
		ID:      i.DistroID,
		Family:  i.Family,
		Version: i.DistroVersion,
	}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == OSLinux
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == OSDarwin
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == OSWindows
}

// String renders the descriptor as "os/arch".
func (i *Info) String() string {
	return i.OS + "/" + i.Arch
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when host facts are
// supplied by the caller instead of detected.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured info and error.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	return s.Info, s.Err
}
