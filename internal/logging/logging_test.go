package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Options{Level: "Debug", Format: "JSON"}).Validate(); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}
	if err := (Options{}).Validate(); err != nil {
		t.Fatalf("expected empty options to be valid, got %v", err)
	}
	if err := (Options{Level: "loud"}).Validate(); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if err := (Options{Format: "xml"}).Validate(); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestNewJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "word", "cat")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected json record: %v", err)
	}
	if rec["msg"] != "shown" || rec["word"] != "cat" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewTextHasSource(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	New(Options{}, &buf)
	slog.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "source=") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
