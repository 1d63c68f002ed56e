package upload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
)

func TestStorageURL(t *testing.T) {
	s := Storage{Root: "/srv/public"}
	if got := s.URL("x.jpg"); got != "/storage/images/x.jpg" {
		t.Errorf("URL = %q", got)
	}
	if got := s.ImagesPath(); got != filepath.Join("/srv/public", "images") {
		t.Errorf("ImagesPath = %q", got)
	}
}

func TestStorageDelete(t *testing.T) {
	s := Storage{Root: t.TempDir()}
	if err := os.MkdirAll(s.ImagesPath(), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.jpg", "a-thumb.jpg"} {
		if err := os.WriteFile(filepath.Join(s.ImagesPath(), name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Delete("/images/a.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(s.ImagesPath(), "a-thumb.jpg")); err != nil {
		t.Errorf("sibling variant removed: %v", err)
	}
	if err := s.Delete("images/a.jpg"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("images"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("directory delete err = %v, want ErrNotFound", err)
	}
}

func TestStorageRejectsEscapes(t *testing.T) {
	s := Storage{Root: t.TempDir()}

	for _, rel := range []string{"", "  ", "..", "../etc/passwd", "images/../../x", "."} {
		err := s.Delete(rel)
		if !apperr.IsValidation(err) {
			t.Errorf("Delete(%q) err = %v, want validation error", rel, err)
		}
	}
}
