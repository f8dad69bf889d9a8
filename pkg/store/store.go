package store

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store maps cache keys to document payloads.
//
// The interface deliberately has no error returns: implementations collapse
// every I/O failure into a miss or no-op so the cache can never be less
// reliable than fetching directly. See the package documentation.
type Store interface {
	// Read returns the entry's bytes and true if the entry exists and is
	// readable. Any failure, including a corrupted entry, reads as a miss.
	Read(key Key) ([]byte, bool)

	// Write stores (or overwrites) the entry for key. Best-effort: a
	// failed write is dropped, never surfaced.
	Write(key Key, data []byte)

	// ClearAll removes every entry. Best-effort.
	ClearAll()

	// TotalSize returns the summed size of all entries in bytes, or 0 if
	// the store cannot be enumerated.
	TotalSize() int64
}

// DefaultDir returns the default cache directory under the platform's
// user cache area.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, "pdfcache"), nil
}

// FileStore is a disk-backed Store holding one file per document inside a
// single exclusively-owned directory.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file store rooted at dir. The directory is created
// if missing; creation failure is swallowed since the first Write retries it
// and a persistently broken directory simply behaves as an empty cache.
func NewFileStore(dir string) *FileStore {
	logger := log.With().Str("component", "file-store").Str("dir", dir).Logger()

	if err := os.MkdirAll(dir, 0o700); err != nil {
		StoreErrors.WithLabelValues("file", "mkdir").Inc()
		logger.Warn().Err(err).Msg("Cache directory creation failed, continuing without")
	}

	return &FileStore{dir: dir, logger: logger}
}

// Dir returns the cache directory path.
func (s *FileStore) Dir() string {
	return s.dir
}

// Read implements Store.
func (s *FileStore) Read(key Key) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			// Unreadable entry: treat as a miss so it gets re-fetched.
			StoreErrors.WithLabelValues("file", "read").Inc()
			s.logger.Debug().Err(err).Str("key", key.String()).Msg("Entry unreadable, treating as miss")
		}
		return nil, false
	}
	return data, true
}

// Write implements Store. The entry is written to a temp file in the cache
// directory and renamed into place, so a concurrent Read never observes a
// partial entry.
func (s *FileStore) Write(key Key, data []byte) {
	// The directory may have been cleared or never created.
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		StoreErrors.WithLabelValues("file", "write").Inc()
		s.logger.Debug().Err(err).Str("key", key.String()).Msg("Cache write skipped")
		return
	}

	path := s.path(key)
	tmp := fmt.Sprintf("%s.tmp.%d", path, rand.Int())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		StoreErrors.WithLabelValues("file", "write").Inc()
		s.logger.Debug().Err(err).Str("key", key.String()).Msg("Cache write failed")
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		StoreErrors.WithLabelValues("file", "write").Inc()
		s.logger.Debug().Err(err).Str("key", key.String()).Msg("Cache write rename failed")
		os.Remove(tmp)
		return
	}

	StoreWrites.WithLabelValues("file").Inc()
}

// ClearAll implements Store. The whole directory is removed and recreated
// empty.
func (s *FileStore) ClearAll() {
	if err := os.RemoveAll(s.dir); err != nil {
		StoreErrors.WithLabelValues("file", "clear").Inc()
		s.logger.Warn().Err(err).Msg("Cache clear failed")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		StoreErrors.WithLabelValues("file", "clear").Inc()
		s.logger.Warn().Err(err).Msg("Cache directory recreation failed")
	}
}

// TotalSize implements Store.
func (s *FileStore) TotalSize() int64 {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		StoreErrors.WithLabelValues("file", "size").Inc()
		return 0
	}

	var total int64
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			StoreErrors.WithLabelValues("file", "size").Inc()
			continue
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
	}
	return total
}

func (s *FileStore) path(key Key) string {
	return filepath.Join(s.dir, key.Filename())
}
