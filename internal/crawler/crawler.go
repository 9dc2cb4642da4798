// Package crawler walks the media root and records which media files exist.
package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"

	"pedigree/internal/errors"
)

// Crawler scans a directory tree for media files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a crawler that skips VCS and dependency directories
// as well as any hidden directory.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored: []string{".git", "node_modules"},
	}
}

// Walk streams the slash-separated path of every regular file under root,
// relative to root.
func (c *Crawler) Walk(root string, onFile func(rel string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if c.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		onFile(filepath.ToSlash(rel))
		return nil
	})
}

func (c *Crawler) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}

// MediaIndex is the set of media paths present under a media root.
type MediaIndex struct {
	Root  string
	paths map[string]struct{}
}

// ScanMedia walks root with a default crawler.
func ScanMedia(root string) (*MediaIndex, error) {
	return NewCrawler().ScanMedia(root)
}

// ScanMedia indexes every file under root.
func (c *Crawler) ScanMedia(root string) (*MediaIndex, error) {
	idx := &MediaIndex{Root: root, paths: make(map[string]struct{})}
	err := c.Walk(root, func(rel string) {
		idx.paths[rel] = struct{}{}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan media root %s", root)
	}
	return idx, nil
}

// Len returns the number of indexed files.
func (m *MediaIndex) Len() int {
	if m == nil {
		return 0
	}
	return len(m.paths)
}

// Has reports whether the portable path exists. Matching is case-sensitive.
func (m *MediaIndex) Has(path string) bool {
	if m == nil {
		return false
	}
	_, ok := m.paths[strings.TrimPrefix(path, "/")]
	return ok
}

// Filter returns the paths that exist, in order, and how many were dropped.
func (m *MediaIndex) Filter(paths []string) ([]string, int) {
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if m.Has(p) {
			kept = append(kept, p)
		}
	}
	return kept, len(paths) - len(kept)
}
