// Package cache stores structured resumes by the SHA-256 digest of their source document.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spigell/cv-screener/internal/resume"
)

// ErrCorruptEntry is returned by Get when a stored entry cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Store persists extraction results keyed by content digest.
// Valid entries are written once and never overwritten; corrupt ones may be replaced.
type Store interface {
	// Get returns the stored resume for digest and whether it was found.
	Get(ctx context.Context, digest string) (*resume.Resume, bool, error)
	// Put stores r under digest unless a valid entry already exists.
	Put(ctx context.Context, digest string, r *resume.Resume) error
}

// Key returns the hex SHA-256 digest of the file contents at path.
func Key(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func validDigest(digest string) error {
	if len(digest) != sha256.Size*2 {
		return fmt.Errorf("invalid digest %q", digest)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return fmt.Errorf("invalid digest %q: %w", digest, err)
	}
	return nil
}

func decodeEntry(digest string, data []byte) (*resume.Resume, error) {
	var r resume.Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCorruptEntry, digest, err)
	}
	return &r, nil
}
