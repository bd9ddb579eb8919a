package safety

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadAllWithLimit(t *testing.T) {
	_, err := ReadAllWithLimit(strings.NewReader("abc"), 2)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	data, err := ReadAllWithLimit(io.NopCloser(strings.NewReader("abc")), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "abc" {
		t.Fatalf("unexpected data: %q", string(data))
	}

	if _, err := ReadAllWithLimit(strings.NewReader("abc"), 0); err == nil {
		t.Fatal("expected zero limit to fail")
	}
}

func TestReadFileWithLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	data, err := ReadFileWithLimit(path, 10)
	if err != nil {
		t.Fatalf("ReadFileWithLimit() failed: %v", err)
	}
	if string(data) != "0123456789" {
		t.Errorf("unexpected data: %q", data)
	}

	if _, err := ReadFileWithLimit(path, 9); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := ReadFileWithLimit(dir, 10); err == nil {
		t.Error("expected directory to be rejected")
	}
	if _, err := ReadFileWithLimit(filepath.Join(dir, "missing.png"), 10); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
