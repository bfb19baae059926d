package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/idilsaglam/taskpage/internal/model"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "todos.json"))
	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestSaveThenLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "data", "todos.json"))
	in := []model.Task{
		{ID: "1", Title: "Learn X"},
		{ID: "2", Title: "Ship", Description: "v1", Completed: true},
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[1].Title != "Ship" || !out[1].Completed || out[1].Description != "v1" {
		t.Errorf("round trip: got %+v", out)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}
}

func TestDirectoryPathGetsDefaultName(t *testing.T) {
	dir := t.TempDir()
	if got := New(dir).Path(); got != filepath.Join(dir, DefaultFileName) {
		t.Errorf("Path: got %q", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path).Load(); err == nil {
		t.Error("expected an error for corrupt data")
	}
}
