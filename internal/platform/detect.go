package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using the running process's environment.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a new platform detector for the running process.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect returns the host descriptor.
//
// OS and architecture come from the Go runtime and are mapped to release
// naming. On Linux, distribution details are looked up with gopsutil; a
// lookup failure leaves them empty rather than failing the run.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:     hostOS(d.goos),
		Arch:   hostArch(d.goarch),
		GOOS:   d.goos,
		GOARCH: d.goarch,
	}

	if d.goos == "linux" {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		platform = normalizePlatform(platform)
		if platform != "" {
			info.DistroID = platform
			info.Family = mapFamily(family)
			info.DistroVersion = normalizePlatform(version)
		}
	}

	return info, nil
}
