package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolveScript(t *testing.T) {
	script := `# larf configuration
log_level = "debug"
log_pretty = false
lang_max_depth = 2 * 256
ratio = 0.5
tags = ["a", "b"]
func unused() { return 1 }
`

	r, err := resolve(t.Context())(strings.NewReader(script))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	want := settings{
		"log_level":      "debug",
		"log_pretty":     false,
		"lang_max_depth": "512",
		"ratio":          "0.5",
		"tags":           "a,b",
	}

	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveScriptFailure(t *testing.T) {
	for _, script := range []string{
		"x = (1",
		`raise ValueError("bad")`,
		"x = undefined",
	} {
		r, err := resolve(t.Context())(strings.NewReader(script))
		if err != nil {
			t.Fatalf("resolve(%q) error = %v", script, err)
		}

		if diff := cmp.Diff(settings{}, r); diff != "" {
			t.Errorf("resolve(%q) mismatch (-want +got):\n%s", script, diff)
		}
	}
}

func TestResolveYAML(t *testing.T) {
	r, err := resolveYAML(strings.NewReader("log-level: warn\nlang_max_depth: 64\ntags: [x, y]\n"))
	if err != nil {
		t.Fatalf("resolveYAML() error = %v", err)
	}

	want := settings{
		"log-level":      "warn",
		"lang_max_depth": "64",
		"tags":           "x,y",
	}

	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("resolveYAML() mismatch (-want +got):\n%s", diff)
	}

	if _, err := resolveYAML(strings.NewReader("")); err != nil {
		t.Errorf("resolveYAML(empty) error = %v", err)
	}
}

func TestSettingsResolve(t *testing.T) {
	s := settings{"log_level": "debug", "max-depth": "9"}

	tests := []struct {
		flag string
		want any
	}{
		{flag: "log-level", want: "debug"},
		{flag: "max-depth", want: "9"},
		{flag: "missing", want: nil},
	}

	for _, tt := range tests {
		got, err := s.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", tt.flag, err)
		}

		if got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.flag, got, tt.want)
		}
	}
}

func TestConfigurationLoaders(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, baseConfig)
	yml := script + ".yaml"

	if err := os.WriteFile(script, []byte("log_level = \"debug\"\ndepth = 40 + 2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := os.WriteFile(yml, []byte("name: yaml\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var flags struct {
		LogLevel string `default:"info"`
		Depth    int    `default:"1"`
		Name     string
		Pretty   bool `default:"true" negatable:""`
	}

	parser, err := kong.New(&flags,
		kong.Configuration(resolveYAML, yml),
		kong.Configuration(resolve(t.Context()), script),
	)
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	if _, err := parser.Parse([]string{"--no-pretty"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if flags.LogLevel != "debug" || flags.Depth != 42 || flags.Name != "yaml" || flags.Pretty {
		t.Errorf("flags = %+v", flags)
	}
}
