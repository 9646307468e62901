package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/resume"
)

const entryExt = ".json"

// FileStore keeps one indented JSON file per digest under Dir.
type FileStore struct {
	Dir string
}

// Entry describes a cached result on disk.
type Entry struct {
	Digest    string    `json:"digest"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(digest string) string {
	return filepath.Join(s.Dir, digest+entryExt)
}

func (s *FileStore) Get(_ context.Context, digest string) (*resume.Resume, bool, error) {
	if err := validDigest(digest); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path(digest))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	r, err := decodeEntry(digest, data)
	if err != nil {
		return nil, false, err
	}

	return r, true, nil
}

// Put writes r to a temporary file and renames it into place, so readers never see a
// partial entry. An existing entry is left untouched unless it does not decode.
func (s *FileStore) Put(_ context.Context, digest string, r *resume.Resume) error {
	if err := validDigest(digest); err != nil {
		return err
	}
	if r == nil {
		return errors.New("nothing to cache")
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	target := s.path(digest)
	if existing, err := os.ReadFile(target); err == nil {
		if _, err := decodeEntry(digest, existing); err == nil {
			return nil
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, digest+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}

	return nil
}

// List returns the cached entries ordered by creation time, oldest first.
func (s *FileStore) List() ([]Entry, error) {
	items, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		digest, ok := strings.CutSuffix(item.Name(), entryExt)
		if !ok || item.IsDir() || validDigest(digest) != nil {
			continue
		}

		info, err := item.Info()
		if err != nil {
			return nil, fmt.Errorf("stat cache entry %s: %w", digest, err)
		}

		entries = append(entries, Entry{Digest: digest, Size: info.Size(), CreatedAt: info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Digest < entries[j].Digest
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

// Purge removes every cached entry and returns how many were deleted.
// Files that do not look like cache entries are kept.
func (s *FileStore) Purge() (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if err := os.Remove(s.path(entry.Digest)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove cache entry %s: %w", entry.Digest, err)
		}
		removed++
	}

	return removed, nil
}
