package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/platform"
)

// Config holds configuration for the installer
type Config struct {
	// WorkDir is the per-run directory. Downloads and the extracted tree are
	// written beneath it. Required.
	WorkDir string
	// Host is the host descriptor used to name the archive. Required.
	Host *platform.Info
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// VerifyChecksums enables the SHA256 check against the release checksums file.
	VerifyChecksums bool
	// SigningKeyPath, when set, also verifies the checksums file's detached
	// OpenPGP signature. Implies VerifyChecksums.
	SigningKeyPath string
	// Retries is the number of extra download attempts after a failure.
	Retries int

	Fetcher  Fetcher  // defaults to NewDownloader()
	Unpacker Unpacker // defaults to NewExtractor()
	Logger   *zap.SugaredLogger
}

// Installer downloads, optionally verifies, and extracts one release archive.
type Installer struct {
	workDir  string
	baseURL  string
	host     *platform.Info
	fetcher  Fetcher
	unpacker Unpacker
	verifier *Verifier
	verify   bool
	log      *zap.SugaredLogger
}

// NewInstaller creates a new installer
func NewInstaller(config Config) (*Installer, error) {
	if config.WorkDir == "" {
		return nil, fmt.Errorf("WorkDir is required")
	}
	if config.Host == nil {
		return nil, fmt.Errorf("Host is required")
	}

	inst := &Installer{
		workDir:  config.WorkDir,
		baseURL:  config.BaseURL,
		host:     config.Host,
		fetcher:  config.Fetcher,
		unpacker: config.Unpacker,
		verifier: NewVerifier(nil),
		verify:   config.VerifyChecksums || config.SigningKeyPath != "",
		log:      config.Logger,
	}

	if inst.baseURL == "" {
		inst.baseURL = DefaultBaseURL
	}
	if inst.fetcher == nil {
		inst.fetcher = NewDownloader().WithRetries(config.Retries)
	}
	if inst.unpacker == nil {
		inst.unpacker = NewExtractor()
	}
	if inst.log == nil {
		inst.log = zap.NewNop().Sugar()
	}

	if config.SigningKeyPath != "" {
		keyring, err := LoadKeyring(config.SigningKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load signing key: %w", err)
		}
		inst.verifier = NewVerifier(keyring)
	}

	return inst, nil
}

// Describe returns the archive descriptor for version on this installer's host.
func (i *Installer) Describe(version string) ArchiveDescriptor {
	return Describe(i.baseURL, version, i.host)
}

// Install fetches and unpacks the release archive for version and returns
// the path of the executable inside the extracted tree.
func (i *Installer) Install(ctx context.Context, version string) (string, error) {
	desc := i.Describe(version)
	downloadDir := filepath.Join(i.workDir, "downloads")
	extractDir := filepath.Join(i.workDir, "extract")

	i.log.Infow("downloading release archive", "url", desc.URL)

	archivePath := filepath.Join(downloadDir, desc.FileName)
	if err := i.fetcher.DownloadToFile(ctx, desc.URL, archivePath); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownload, desc.URL, err)
	}

	if i.verify {
		if err := i.verifyArchive(ctx, desc, archivePath, downloadDir); err != nil {
			return "", err
		}
	}

	if err := os.RemoveAll(extractDir); err != nil {
		return "", fmt.Errorf("%w: clean extract dir: %w", ErrExtraction, err)
	}
	if err := i.unpacker.Extract(archivePath, extractDir, desc.Extension); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, desc.FileName, err)
	}

	exePath := filepath.Join(extractDir, desc.ExecutableName())
	info, err := os.Stat(exePath)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s not present in %s", ErrMissingExecutable, desc.ExecutableName(), desc.FileName)
	}

	if desc.Platform != "windows" {
		if err := SetExecutable(exePath); err != nil {
			return "", err
		}
	}

	i.log.Debugw("installed executable", "path", exePath)

	return exePath, nil
}

// verifyArchive checks the archive against the release checksums file and,
// when a keyring is configured, the checksums file against its signature.
func (i *Installer) verifyArchive(ctx context.Context, desc ArchiveDescriptor, archivePath, downloadDir string) error {
	checksumsPath := filepath.Join(downloadDir, lastSegment(desc.ChecksumsURL))
	if err := i.fetcher.DownloadToFile(ctx, desc.ChecksumsURL, checksumsPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownload, desc.ChecksumsURL, err)
	}

	if i.verifier.HasKeyring() {
		sigPath := filepath.Join(downloadDir, lastSegment(desc.SignatureURL))
		if err := i.fetcher.DownloadToFile(ctx, desc.SignatureURL, sigPath); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDownload, desc.SignatureURL, err)
		}
		if err := i.verifier.VerifySignature(checksumsPath, sigPath); err != nil {
			return err
		}
		i.log.Infow("checksums signature verified", "file", lastSegment(desc.ChecksumsURL))
	}

	if err := i.verifier.VerifyChecksum(archivePath, checksumsPath); err != nil {
		return err
	}
	i.log.Infow("archive checksum verified", "file", desc.FileName)

	return nil
}

func lastSegment(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}
