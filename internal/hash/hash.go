// Package hash fingerprints patched files.
//
// Install records a SHA-256 checksum of every file it writes. Status later
// rehashes those files to report drift, i.e. edits made after install that a
// restore from backup would discard.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher computes content fingerprints.
type Hasher interface {
	// HashFile returns the hex fingerprint of the file at path.
	HashFile(path string) (string, error)

	// HashBytes returns the hex fingerprint of data.
	HashBytes(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile streams the file through SHA-256.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// HashBytes returns the SHA-256 of data. Install uses it to checksum content
// it is about to write, so the record matches the file without a re-read.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FakeHasher returns canned fingerprints keyed by path, for drift tests.
type FakeHasher struct {
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{hashes: make(map[string]string)}
}

// SetHash pins the fingerprint returned for path.
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// HashFile returns the pinned fingerprint, or an error when none was set.
func (h *FakeHasher) HashFile(path string) (string, error) {
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "", fmt.Errorf("failed to open %s: %w", path, os.ErrNotExist)
}

// HashBytes returns a fingerprint derived from the content length.
func (h *FakeHasher) HashBytes(data []byte) string {
	return fmt.Sprintf("fake-%d", len(data))
}
