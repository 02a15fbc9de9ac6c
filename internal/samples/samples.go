package samples

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Resolve when no sample matches the name.
var ErrNotFound = errors.New("sample not found")

// imageExtensions is the case-insensitive allow-list of image formats.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Item is one unit of batch work: a single image to classify. IDs are
// assigned 0-based in path-sorted order, so an unchanged directory tree
// always enumerates to the same ids. The browser pre-renders placeholders
// keyed by ID before the stream starts.
type Item struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// List enumerates every image under root, recursively, sorted by full path
// ascending. A missing or unreadable root yields an empty list alongside the
// error so callers can log and carry on.
func List(root string) ([]Item, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip unreadable subtrees rather than abandoning the scan.
			if path == root {
				return walkErr
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !IsImage(entry.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan samples dir %q: %w", root, err)
	}

	sort.Strings(paths)

	items := make([]Item, 0, len(paths))
	for i, path := range paths {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		items = append(items, Item{
			ID:       i,
			Filename: filepath.Base(path),
			Path:     rel,
		})
	}
	return items, nil
}

// Resolve locates a sample file by base name anywhere under root and returns
// its absolute path. Names containing path separators or traversal elements
// are rejected outright.
func Resolve(root, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	var found string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if entry.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve sample %q: %w", name, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return filepath.Abs(found)
}

// Absolute returns the absolute path of an enumerated item under root.
func Absolute(root string, item Item) string {
	return filepath.Join(root, item.Path)
}

// IsImage reports whether the file name carries an allowed image extension.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := imageExtensions[ext]
	return ok
}

// Count returns the number of images under root; a missing root counts as zero.
func Count(root string) int {
	items, _ := List(root)
	return len(items)
}
