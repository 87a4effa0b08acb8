package cache

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileCache keeps one file per entry below a directory. Entries are grouped
// into a subdirectory named after the first segment of their key (frame,
// artifact, or the build scope a ScopedKeyer adds), so stale groups can be
// removed by hand.
//
// An entry file starts with its expiry in Unix nanoseconds (0 for never) on
// a line of its own, followed by the raw value.
type FileCache struct {
	dir string
}

// NewFileCache opens or creates a cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Get reads an entry. Corrupt and expired entries are removed and reported
// as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, live := decodeEntry(raw, time.Now())
	if !live {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes an entry through a temporary file and a rename, so readers
// never see a partial value.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).UnixNano()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	header := strconv.AppendInt(nil, expires, 10)
	header = append(header, '\n')
	if _, err := tmp.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes an entry if present.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Dir is the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry, keeping the root directory.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Prune removes expired and unreadable entries and returns how many it
// removed.
func (c *FileCache) Prune() (int, error) {
	now := time.Now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != entryExt {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, live := decodeEntry(raw, now); !live {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (c *FileCache) Close() error { return nil }

const entryExt = ".entry"

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, keyGroup(key), Hash([]byte(key))+entryExt)
}

// keyGroup is the first colon-separated segment of key, reduced to
// characters that are safe in a directory name.
func keyGroup(key string) string {
	group, _, found := strings.Cut(key, ":")
	if !found || group == "" {
		return "misc"
	}
	group = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, group)
	if strings.Trim(group, ".") == "" {
		return "misc"
	}
	return group
}

// decodeEntry splits an entry into its value and whether it is still live
// at now.
func decodeEntry(raw []byte, now time.Time) ([]byte, bool) {
	line, data, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return nil, false
	}
	expires, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return nil, false
	}
	if expires != 0 && now.UnixNano() > expires {
		return nil, false
	}
	return data, true
}

var _ Cache = (*FileCache)(nil)
