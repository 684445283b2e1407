package version

import (
	"strings"
	"testing"
)

func TestCurrent_Defaults(t *testing.T) {
	b := Current()

	if b.Version != "dev" {
		t.Errorf("expected dev version without ldflags, got %q", b.Version)
	}
	if b.Commit != "unknown" || b.Date != "unknown" {
		t.Errorf("expected unknown commit/date without ldflags, got %q/%q", b.Commit, b.Date)
	}
	if !strings.HasPrefix(b.GoVersion, "go") {
		t.Errorf("expected runtime go version, got %q", b.GoVersion)
	}
}

func TestBuild_String(t *testing.T) {
	b := Build{Version: "1.4.0", Commit: "abc1234", Date: "2026-08-31", GoVersion: "go1.22"}

	s := b.String()
	for _, part := range []string{"1.4.0", "abc1234", "2026-08-31", "go1.22"} {
		if !strings.Contains(s, part) {
			t.Errorf("expected %q in %q", part, s)
		}
	}
}

func TestCurrent_StringMentionsVersion(t *testing.T) {
	if !strings.Contains(Current().String(), "dev") {
		t.Errorf("expected build string to mention the version, got %q", Current().String())
	}
}
