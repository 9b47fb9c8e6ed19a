package tokens_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dalemusser/dojo/internal/app/store/tokens"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	s, err := tokens.NewFileStore(path, nil, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	got, err := s.Load()
	if err != nil || got != "" {
		t.Fatalf("Load on empty store = %q, %v", got, err)
	}

	if err := s.Save("tok-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(raw), "tok-123") {
		t.Error("token stored in plain text")
	}

	// A second store over the same path reuses the generated keys.
	s2, err := tokens.NewFileStore(path, nil, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, err = s2.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("Load = %q, want tok-123", got)
	}

	if err := s2.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s2.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
	if got, _ := s.Load(); got != "" {
		t.Errorf("Load after Clear = %q", got)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s, err := tokens.NewFileStore(path, []byte("0123456789abcdef0123456789abcdef"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err = s.Load()
	if !errors.Is(err, tokens.ErrCorrupt) {
		t.Errorf("Load err = %v, want ErrCorrupt", err)
	}
}

func TestFileStore_EmptyPath(t *testing.T) {
	if _, err := tokens.NewFileStore("  ", nil, nil); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestMemoryStore(t *testing.T) {
	m := tokens.NewMemoryStore("a")
	if got, _ := m.Load(); got != "a" {
		t.Errorf("Load = %q", got)
	}
	_ = m.Save("b")
	if got, _ := m.Load(); got != "b" {
		t.Errorf("Load = %q", got)
	}
	_ = m.Clear()
	if got, _ := m.Load(); got != "" {
		t.Errorf("Load after Clear = %q", got)
	}
}

func TestFileStore_HashKeyWithoutBlockKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s, err := tokens.NewFileStore(path, []byte("0123456789abcdef0123456789abcdef"), []byte(""))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.Save("tok-456"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, err := s.Load(); err != nil || got != "tok-456" {
		t.Errorf("Load = %q, %v; want tok-456", got, err)
	}
}

func TestFileStore_BlockKeyWithoutHashKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if _, err := tokens.NewFileStore(path, nil, []byte("0123456789abcdef")); err == nil {
		t.Fatal("expected an error for a block key without a hash key")
	}
	if _, err := os.Stat(path + ".key"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("key file should not be generated, stat err = %v", err)
	}
}
