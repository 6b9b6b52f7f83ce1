package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type page string

func (p page) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(p))
	return err
}

type failing struct{}

func (failing) Render(io.Writer) error { return errors.New("render failed") }

func TestPersistOverwrites(t *testing.T) {
	s := New(t.TempDir())
	key := "Dataset Summary Metric"
	for _, body := range []string{"<html>one</html>", "<html>two</html>"} {
		path, err := s.Persist(page(body), key)
		if err != nil {
			t.Fatalf("Persist: %v", err)
		}
		if want := filepath.Join(s.Dir, key+".html"); path != want {
			t.Fatalf("path = %q, want %q", path, want)
		}
		got, err := s.Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if string(got) != body {
			t.Fatalf("content = %q, want %q", got, body)
		}
	}
	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 1 {
		t.Fatalf("files = %d, want 1", len(entries))
	}
}

func TestPersistErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		s    *Store
		key  string
		a    page
	}{
		{"missing dir", New(filepath.Join(dir, "absent")), "Data Drift Table", "x"},
		{"separator", New(dir), "a/b", "x"},
		{"empty key", New(dir), "", "x"},
	}
	for _, tc := range cases {
		_, err := tc.s.Persist(tc.a, tc.key)
		var se *StoreIOError
		if !errors.As(err, &se) {
			t.Fatalf("%s: err = %v, want StoreIOError", tc.name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "absent")); !os.IsNotExist(err) {
		t.Fatalf("Persist created the directory")
	}
}

func TestPersistRenderFailureKeepsPrevious(t *testing.T) {
	s := New(t.TempDir())
	path, err := s.Persist(page("old"), "k")
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := s.Persist(failing{}, "k"); err == nil {
		t.Fatalf("expected error")
	}
	got, _ := s.Load(path)
	if string(got) != "old" {
		t.Fatalf("content = %q, want old", got)
	}
}

func TestInitAndLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "Metrics"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := s.Persist(page("ok"), "k"); err != nil {
		t.Fatalf("Persist after Init: %v", err)
	}
	_, err := s.Load(s.Path("missing"))
	var se *StoreIOError
	if !errors.As(err, &se) || se.Op != "read" || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load missing err = %v", err)
	}
	if New("").Dir != DefaultDir {
		t.Fatalf("default dir = %q", New("").Dir)
	}
}
