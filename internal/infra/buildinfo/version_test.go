package buildinfo

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name       string
		in         Info
		wantCommit string
		wantTime   string
	}{
		{"vcs fills blanks", Info{}, "0123456789ab", "2026-10-01T12:00:00Z"},
		{"ldflags win", Info{Commit: "abc1234", BuildTime: "2026-09-30"}, "abc1234", "2026-09-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromSettings(tt.in, settings)
			if got.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", got.Commit, tt.wantCommit)
			}
			if got.BuildTime != tt.wantTime {
				t.Errorf("BuildTime = %q, want %q", got.BuildTime, tt.wantTime)
			}
			if !got.Modified {
				t.Error("Modified should be set from vcs.modified")
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.Commit == "" || info.BuildTime == "" {
		t.Errorf("blank fields not defaulted: %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestString(t *testing.T) {
	s := String()
	info := Get()
	if !strings.HasPrefix(s, info.Version+" ("+info.Commit) {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, info.GoVersion) {
		t.Errorf("String() = %q, missing go version", s)
	}
}

func TestAttrs(t *testing.T) {
	keys := map[string]bool{}
	for _, a := range Attrs() {
		attr, ok := a.(slog.Attr)
		if !ok {
			t.Fatalf("Attrs() element %T is not slog.Attr", a)
		}
		keys[attr.Key] = true
	}
	for _, k := range []string{"version", "commit", "go", "modified"} {
		if !keys[k] {
			t.Errorf("Attrs() missing %q", k)
		}
	}
}
