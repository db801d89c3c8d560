package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// modePrefix tags each line of the history file with its mode.
var modePrefix = map[inputMode]string{
	modeEval: "E:",
	modeCtrl: "C:",
}

func (e HistoryEntry) encode() string { return modePrefix[e.Mode] + e.Line + "\n" }

func decodeEntry(line string) HistoryEntry {
	for mode, prefix := range modePrefix {
		if s, ok := strings.CutPrefix(line, prefix); ok {
			return HistoryEntry{Line: s, Mode: mode}
		}
	}

	return HistoryEntry{Line: line, Mode: modeEval}
}

// History is the persistent list of submitted lines, oldest first. A line
// entered again in the same mode moves to the end.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns a history stored at path. An empty path keeps the
// history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the content of the history file. A missing
// file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, decodeEntry(line))
		}
	}

	return scanner.Err()
}

// Add appends line in the given mode and persists it.
func (h *History) Add(line string, mode inputMode) error {
	entry := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if entry.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.rewrite()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.encode())

	return err
}

// Entry returns the i'th entry, oldest first.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewrite replaces the history file with the current entries. The caller
// holds h.mu.
func (h *History) rewrite() error {
	var sb strings.Builder

	for _, e := range h.entries {
		sb.WriteString(e.encode())
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}
