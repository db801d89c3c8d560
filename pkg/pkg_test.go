package pkg

import (
	"regexp"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "larf" {
		t.Errorf("Name = %q, want %q", Name, "larf")
	}
}

func TestVersion(t *testing.T) {
	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

	if v := Version(); !semver.MatchString(v) {
		t.Errorf("Version() = %q, not a semantic version", v)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for _, a := range Author {
		if a.Name == "" || a.Email == "" {
			t.Errorf("incomplete author entry: %+v", a)
		}
	}
}
