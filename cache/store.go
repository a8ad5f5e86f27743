package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mna/tickscript/lang/types"
)

// Store is a directory of compiled programs keyed by a digest of their
// source text, ported from original_source/services/cache_manager.py's
// BytecodeCache (get/set/cleanup), upgraded from that file's MD5 digest
// to sha256 (spec.md §6 explicitly allows "MD5 or better").
type Store struct {
	Dir string
}

// Open returns a Store rooted at dir, creating it if necessary.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Digest returns the cache key for source, a hex-encoded sha256 sum.
func Digest(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(digest string) string {
	return filepath.Join(s.Dir, digest+".bin")
}

// Get returns the cached program for source, and false if no entry
// exists or the entry is unreadable (a corrupt or stale-format cache
// entry is treated as a miss, not an error, per cache_manager.py's own
// `except Exception` -> `return None, None` behavior).
func (s *Store) Get(source []byte) (*types.Chunk, map[string]*types.FunctionObject, bool) {
	f, err := os.Open(s.path(Digest(source)))
	if err != nil {
		return nil, nil, false
	}
	defer f.Close()

	top, functions, err := decodeProgram(f)
	if err != nil {
		return nil, nil, false
	}
	return top, functions, true
}

// Set persists top/functions under source's digest key, writing to a
// temporary file in the same directory and renaming into place so a
// concurrent Get never observes a partially written entry.
func (s *Store) Set(source []byte, top *types.Chunk, functions map[string]*types.FunctionObject) error {
	dest := s.path(Digest(source))
	tmp, err := os.CreateTemp(s.Dir, "*.tmp")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encodeProgram(tmp, top, functions); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Clear removes every entry in the store, ported from cache_manager.py's
// `clear`.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// Cleanup removes entries older than maxAge, returning the count
// removed, ported from cache_manager.py's `cleanup(max_age_days)`.
func (s *Store) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("cache: %w", err)
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil {
				return removed, fmt.Errorf("cache: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}
