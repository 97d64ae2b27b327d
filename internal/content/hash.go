package content

import (
	"fmt"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"lattice/internal/core/errors"
)

// HashTree computes a deterministic digest over every discovered item:
// blake3 of relative path + newline + content + newline, in sorted path
// order. Two trees with identical content produce identical digests, which
// is the entire freshness contract for the cache.
func (s *Source) HashTree() (string, error) {
	rels, err := s.Discover()
	if err != nil {
		return "", err
	}

	hasher := blake3.New(32, nil)
	for _, rel := range rels {
		raw, readErr := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if readErr != nil {
			return "", errors.Wrap(readErr, errors.CodeIO, "hashing "+rel)
		}
		hasher.Write([]byte(rel))
		hasher.Write([]byte("\n"))
		hasher.Write(raw)
		hasher.Write([]byte("\n"))
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// HashItems digests already-loaded items without touching the filesystem.
// Items must be in sorted Rel order for the digest to be stable.
func HashItems(items []Item) string {
	hasher := blake3.New(32, nil)
	for _, it := range items {
		hasher.Write([]byte(it.Rel))
		hasher.Write([]byte("\n"))
		hasher.Write([]byte(it.Body))
		hasher.Write([]byte("\n"))
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
