package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"lattice/internal/core/errors"
)

// Source discovers and loads content items from a directory tree.
type Source struct {
	root         string
	extensions   map[string]bool
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

// SourceOptions controls discovery. Extensions default to markdown.
type SourceOptions struct {
	Extensions   []string
	ExcludeDirs  []string
	ExcludeFiles []string
}

func NewSource(root string, opts SourceOptions) (*Source, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".md", ".markdown"}
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}

	compile := func(patterns []string) ([]glob.Glob, error) {
		globs := make([]glob.Glob, 0, len(patterns))
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern "+p)
			}
			globs = append(globs, g)
		}
		return globs, nil
	}

	dirGlobs, err := compile(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compile(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	return &Source{
		root:         root,
		extensions:   extSet,
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
	}, nil
}

func (s *Source) excludedDir(name string) bool {
	for _, g := range s.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Source) excludedFile(rel string) bool {
	base := filepath.Base(rel)
	for _, g := range s.excludeFiles {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// Discover walks the content root and returns the relative paths of every
// matching file, sorted for deterministic downstream ordering.
func (s *Source) Discover() ([]string, error) {
	var rels []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && (strings.HasPrefix(d.Name(), ".") || s.excludedDir(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if s.excludedFile(rel) {
			return nil
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "discovering content in "+s.root)
	}
	sort.Strings(rels)
	return rels, nil
}

// Load discovers, reads, and parses every item under the root. Items that
// fail to parse are returned as per-item errors alongside the successes so
// a build can continue and report them.
func (s *Source) Load() ([]Item, []error, error) {
	rels, err := s.Discover()
	if err != nil {
		return nil, nil, err
	}

	items := make([]Item, 0, len(rels))
	var itemErrs []error
	for _, rel := range rels {
		path := filepath.Join(s.root, filepath.FromSlash(rel))
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			itemErrs = append(itemErrs, errors.Wrap(readErr, errors.CodeIO, "reading "+rel))
			continue
		}
		item, parseErr := Parse(path, rel, raw)
		if parseErr != nil {
			itemErrs = append(itemErrs, parseErr)
			continue
		}
		items = append(items, item)
	}
	return items, itemErrs, nil
}
