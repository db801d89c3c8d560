package cli

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	prefix := basePrefix()
	if prefix == "" || strings.HasPrefix(prefix, ".") {
		t.Fatalf("basePrefix() = %q", prefix)
	}

	if got := filepath.Base(configDir()); got != prefix {
		t.Errorf("configDir() base = %q, want %q", got, prefix)
	}

	if got := filepath.Base(cacheDir()); got != prefix {
		t.Errorf("cacheDir() base = %q, want %q", got, prefix)
	}

	if got, want := configPath(baseConfig), filepath.Join(configDir(), baseConfig); got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}
}
