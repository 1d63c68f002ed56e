package upload

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
)

// ImagesDir is the directory under the public root that holds variants.
const ImagesDir = "images"

// Storage is the public disk: a root directory served under /storage.
type Storage struct {
	Root string
}

// ImagesPath is where the processor writes variants.
func (s Storage) ImagesPath() string {
	return filepath.Join(s.Root, ImagesDir)
}

// URL returns the public URL of a file inside the images directory.
func (s Storage) URL(filename string) string {
	return "/storage/" + path.Join(ImagesDir, filename)
}

// Delete removes exactly the file at rel, relative to Root. Sibling
// variants are left in place.
func (s Storage) Delete(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return fmt.Errorf("image %s: %w", rel, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return fmt.Errorf("image %s: %w", rel, apperr.ErrNotFound)
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image %s: %w", rel, apperr.ErrNotFound)
		}

		return fmt.Errorf("removing %s: %w", rel, err)
	}

	return nil
}

// resolve maps rel onto the filesystem, refusing anything outside Root.
func (s Storage) resolve(rel string) (string, error) {
	rel = strings.TrimLeft(strings.TrimSpace(rel), "/")
	if rel == "" {
		return "", apperr.Invalid("path", "The path field is required.")
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", apperr.Invalid("path", "The path must stay inside the storage directory.")
	}

	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}
