package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newJSON(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"json", Config{Level: "debug", Format: "json"}, false},
		{"empty format is text", Config{Level: "info"}, false},
		{"unknown level", Config{Level: "loud"}, true},
		{"unknown format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "warn" || cfg.Format != "text" {
		t.Errorf("DefaultConfig() = %+v, want warn/text", cfg)
	}
	if cfg.Output == nil {
		t.Error("DefaultConfig().Output should not be nil")
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newJSON(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("crib searched", "crib_index", 3)

			entry := decodeEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "crib searched" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["crib_index"] != float64(3) {
				t.Errorf("crib_index = %v, want 3", entry["crib_index"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSON(t, "info")

	l.With("batch_id", "pbb-01").Info("batch processed")

	if got := decodeEntry(t, buf)["batch_id"]; got != "pbb-01" {
		t.Errorf("batch_id = %v, want pbb-01", got)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newJSON(t, "warn")

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("debug/info logged at warn level: %s", buf.String())
	}

	l.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("warn message should be logged")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newJSON(t, "error")
	child := l.With("component", "engine")

	child.Info("before")
	if buf.Len() > 0 {
		t.Fatal("info logged at error level")
	}

	if err := SetLevel(l, "debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	child.Info("after")
	if buf.Len() == 0 {
		t.Error("derived logger did not follow the new level")
	}
	if got := LevelOf(child); got != slog.LevelDebug {
		t.Errorf("LevelOf() = %v, want debug", got)
	}

	if err := SetLevel(l, "verbose"); err == nil {
		t.Error("SetLevel() with unknown level should fail")
	}
	if got := LevelOf(l); got != slog.LevelDebug {
		t.Errorf("failed SetLevel changed level to %v", got)
	}
}

func TestLevels_Independent(t *testing.T) {
	quiet, quietBuf := newJSON(t, "error")
	loud, loudBuf := newJSON(t, "debug")

	quiet.Info("dropped")
	loud.Info("kept")

	if quietBuf.Len() != 0 {
		t.Error("a second logger changed the first logger's level")
	}
	if loudBuf.Len() == 0 {
		t.Error("debug logger dropped an info entry")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.With("batch_id", "pbb-x").Error("dropped")
	if got := LevelOf(l); got <= slog.LevelError {
		t.Errorf("LevelOf(Discard()) = %v, want above error", got)
	}
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, buf := newJSON(t, "info")
	SetDefault(l)
	Default().Info("via default")
	if buf.Len() == 0 {
		t.Error("SetDefault() did not replace the default logger")
	}

	SetDefault(nil)
	if Default() == nil {
		t.Error("SetDefault(nil) cleared the default logger")
	}
}

func TestLogger_WithContext(t *testing.T) {
	l, buf := newJSON(t, "info")

	l.WithContext(context.Background()).Info("test message")
	if buf.Len() == 0 {
		t.Error("expected log output")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("batch processed", "component", "engine")

	out := buf.String()
	if !strings.Contains(out, "batch processed") || !strings.Contains(out, "component=engine") {
		t.Errorf("unexpected text output: %s", out)
	}
}
