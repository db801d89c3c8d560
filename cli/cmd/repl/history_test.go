package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() missing file error = %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "x = 1", Mode: modeEval},
		{Line: "list", Mode: modeCtrl},
		{Line: "x = 1", Mode: modeEval}, // moves to the end
		{Line: "x = 1", Mode: modeEval}, // repeated last entry is dropped
		{Line: "  ", Mode: modeEval},    // blank is ignored
		{Line: "y = x", Mode: modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error = %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{Line: "list", Mode: modeCtrl},
		{Line: "x = 1", Mode: modeEval},
		{Line: "y = x", Mode: modeEval},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if diff := cmp.Diff("C:list\nE:x = 1\nE:y = x\n", string(data)); diff != "" {
		t.Errorf("history file mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("reloaded Entries() mismatch (-want +got):\n%s", diff)
	}

	if _, err := reloaded.Entry(3); err != ErrOutOfBounds {
		t.Errorf("Entry(3) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestHistoryInMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("1 + 1", modeEval); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}
