package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks downloaded archives against the release checksums file
// and, when a keyring is configured, the checksums file against its detached
// OpenPGP signature.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier. A nil keyring disables signature checks.
func NewVerifier(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// HasKeyring reports whether signature verification is enabled.
func (v *Verifier) HasKeyring() bool {
	return len(v.keyring) > 0
}

// VerifyChecksum checks the SHA256 of archivePath against the entry for its
// base name in checksumsPath.
func (v *Verifier) VerifyChecksum(archivePath, checksumsPath string) error {
	actual, err := calculateSHA256(archivePath)
	if err != nil {
		return fmt.Errorf("%w: calculate checksum: %w", ErrVerification, err)
	}

	expected, err := findChecksum(checksumsPath, filepath.Base(archivePath))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: checksum mismatch for %s:\nactual:   %s\nexpected: %s",
			ErrVerification, filepath.Base(archivePath), actual, expected)
	}

	return nil
}

// VerifySignature checks a detached signature (armored or binary) over dataPath.
func (v *Verifier) VerifySignature(dataPath, signaturePath string) error {
	if !v.HasKeyring() {
		return fmt.Errorf("%w: no keyring configured", ErrVerification)
	}

	dataFile, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("%w: open data: %w", ErrVerification, err)
	}
	defer dataFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("%w: open signature: %w", ErrVerification, err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, dataFile, sigFile, nil)
	if err != nil {
		// Try non-armored signature
		if _, seekErr := dataFile.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("%w: %w", ErrVerification, seekErr)
		}
		if _, seekErr := sigFile.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("%w: %w", ErrVerification, seekErr)
		}
		_, err = openpgp.CheckDetachedSignature(v.keyring, dataFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: verify signature: %w", ErrVerification, err)
	}

	return nil
}

// LoadKeyring reads an OpenPGP public keyring, armored or binary.
func LoadKeyring(path string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		if _, seekErr := keyringFile.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("read keyring: %w", seekErr)
		}
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a specific filename in a checksum file
// Format: "abc123def456  filename.tar.gz"
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// "*name" marks binary mode in sha256sum output
		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}
