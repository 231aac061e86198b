// Package binary acquires the cyclonedx-gomod executable for a run.
//
// # Flow
//
// Given a resolved release version and the host descriptor, the Installer:
//   - derives the archive descriptor (file name, download URL, extension)
//     through NameArchive
//   - downloads the archive into the run's work directory
//   - optionally verifies it against the release checksums file, and the
//     checksums file against a detached OpenPGP signature
//   - extracts it (zip on Windows, tar.gz elsewhere) into a fresh directory
//   - returns the path of the executable inside the extracted tree
//
// Nothing here is shared between runs. The work directory is created per run
// by the caller and the archive descriptor is recomputed on every install.
//
// # Usage
//
//	inst, err := binary.NewInstaller(binary.Config{
//	    WorkDir: workDir,
//	    Host:    hostInfo,
//	})
//	if err != nil {
//	    return err
//	}
//	exe, err := inst.Install(ctx, "1.4.0")
package binary
