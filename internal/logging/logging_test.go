package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})

	logger.Info("image loaded", "name", "hello", "size", 42, "err", errors.New("oh no"))

	want := `INFO  image loaded name=hello size=42 err="oh no"` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestTextGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{}).With("pid", 7).WithGroup("build")

	logger.Warn("slow", "target", "hello", slog.Group("driver", "bin", "make"))

	want := "WARN  slow pid=7 build.target=hello build.driver.bin=make\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestLevelVar(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := New(&buf, Options{Level: level})

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %q", buf.String())
	}

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	if !strings.HasPrefix(buf.String(), "DEBUG shown") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestVerbosePrefixesTimestamp(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Verbose: true}).Error("failed")

	fields := strings.Fields(buf.String())
	if len(fields) != 3 || fields[1] != "ERROR" || !strings.Contains(fields[0], "T") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Format: FormatJSON}).Info("done", "code", 0)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if record["msg"] != "done" || record["level"] != "INFO" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"xml", FormatText, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}
