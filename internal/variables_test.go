package internal

import (
	"log/slog"
	"strings"
	"testing"
)

// Sets the linker variables for the duration of a test.
func setBuildVars(t *testing.T, v, s, c string) {
	t.Helper()

	oldVersion, oldStage, oldCommit := version, stage, gitCommit
	version, stage, gitCommit = v, s, c
	t.Cleanup(func() {
		version, stage, gitCommit = oldVersion, oldStage, oldCommit
	})
}

func TestInfo(t *testing.T) {
	setBuildVars(t, " V1.2.3 ", "Staging", "abc")

	info := Info()
	if info.Version != "1.2.3" || info.Stage != "staging" || info.Commit != "abc" {
		t.Fatalf("Info() = %+v", info)
	}
	if Version() != "1.2.3" {
		t.Fatalf("Version() = %q", Version())
	}
}

func TestLocalBuild(t *testing.T) {
	setBuildVars(t, "", "", "")

	if !IsLocal() {
		t.Fatal("IsLocal() = false with unset variables")
	}
	if Info().Version != undefined || Info().Stage != undefined {
		t.Fatalf("Info() = %+v, want undefined version and stage", Info())
	}
	if !strings.HasPrefix(VersionString(), localBuild) {
		t.Fatalf("VersionString() = %q, want %q prefix", VersionString(), localBuild)
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		stage string
		want  string
	}{
		{"main", "1.0.0 a1b2c3 ["},
		{"Staging", "1.0.0+staging a1b2c3 ["},
	}

	for _, tt := range tests {
		setBuildVars(t, "1.0.0", tt.stage, "a1b2c3")
		if got := VersionString(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("VersionString() with stage %q = %q, want prefix %q", tt.stage, got, tt.want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	t.Cleanup(func() {
		SetQuiet(false)
		SetDebug(false)
		SetVerbose(false)
	})

	tests := []struct {
		quiet, debug bool
		want         slog.Level
	}{
		{false, false, slog.LevelInfo},
		{true, false, slog.LevelWarn},
		{false, true, slog.LevelDebug},
		{true, true, slog.LevelDebug},
	}

	for _, tt := range tests {
		SetQuiet(tt.quiet)
		SetDebug(tt.debug)
		if got := LogLevel(); got != tt.want {
			t.Errorf("LogLevel() quiet=%v debug=%v = %v, want %v", tt.quiet, tt.debug, got, tt.want)
		}
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("IsVerbose() = false after SetVerbose(true)")
	}
}
