package binary

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/platform"
)

// NameArchive maps host platform and architecture names to the names used
// in release asset file names, plus the archive extension for the platform.
//
// "win32" becomes "windows" with a zip archive; every other platform passes
// through with tar.gz. "ia32" and "x32" become "x86"; every other
// architecture passes through. Unknown values are never rejected.
func NameArchive(osName, arch string) (string, string, string) {
	ext := ExtTarGz
	if osName == platform.OSWindows {
		osName = "windows"
		ext = ExtZip
	}

	switch arch {
	case "ia32", "x32":
		arch = "x86"
	}

	return osName, arch, ext
}

// Describe builds the archive descriptor for version on host.
// A leading "v" on version is ignored.
func Describe(baseURL, version string, host *platform.Info) ArchiveDescriptor {
	version = strings.TrimPrefix(version, "v")
	osName, arch, ext := NameArchive(host.OS, host.Arch)

	releaseURL := fmt.Sprintf("%s/v%s", strings.TrimSuffix(baseURL, "/"), version)
	fileName := fmt.Sprintf("%s_%s_%s_%s.%s", ToolName, version, osName, arch, ext)
	checksums := fmt.Sprintf("%s_%s_checksums.txt", ToolName, version)

	return ArchiveDescriptor{
		Version:      version,
		Platform:     osName,
		Arch:         arch,
		Extension:    ext,
		FileName:     fileName,
		URL:          releaseURL + "/" + fileName,
		ChecksumsURL: releaseURL + "/" + checksums,
		SignatureURL: releaseURL + "/" + checksums + ".sig",
	}
}
