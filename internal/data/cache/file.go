package cache

import (
	"os"
	"path/filepath"

	"lattice/internal/core/errors"
)

// FileCache stores one snapshot per file. Writes go through a temp file and
// rename so a crash mid-write never leaves a truncated snapshot behind.
type FileCache struct {
	path  string
	codec Codec
}

func NewFileCache(path string, codec Codec) *FileCache {
	if codec == nil {
		codec = plainCodec{}
	}
	return &FileCache{path: path, codec: codec}
}

func (c *FileCache) Path() string { return c.path }

// Load reads the stored snapshot. A missing file is CACHE_MISS; anything
// present but unusable (corrupt bytes, wrong codec, wrong schema version) is
// CACHE_UNREADABLE. Callers treat both as "rebuild", but only the second is
// worth logging loudly.
func (c *FileCache) Load() (Snapshot, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrap(err, errors.CodeCacheMiss, "no cache at "+c.path)
		}
		return Snapshot{}, errors.Wrap(err, errors.CodeIO, "reading cache "+c.path)
	}

	snapshot, err := c.codec.Decode(raw)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, errors.CodeCacheUnreadable, "decoding cache "+c.path)
	}
	if snapshot.Version != SchemaVersion {
		return Snapshot{}, errors.Newf(errors.CodeCacheUnreadable,
			"cache %s has schema version %d, want %d", c.path, snapshot.Version, SchemaVersion)
	}
	return snapshot, nil
}

// Save atomically replaces the stored snapshot.
func (c *FileCache) Save(snapshot Snapshot) error {
	data, err := c.codec.Encode(snapshot)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encoding cache snapshot")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeIO, "creating cache directory "+dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "creating temp cache file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeIO, "writing cache "+tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CodeIO, "closing cache "+tmpName)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return errors.Wrap(err, errors.CodeIO, "installing cache "+c.path)
	}
	return nil
}
