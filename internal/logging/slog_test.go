package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger() (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	return m
}

func TestSlogLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *SlogLogger)
		level string
	}{
		{"debug", func(l *SlogLogger) { l.Debug(context.Background(), "m") }, "DEBUG"},
		{"info", func(l *SlogLogger) { l.Info(context.Background(), "m") }, "INFO"},
		{"warn", func(l *SlogLogger) { l.Warn(context.Background(), "m") }, "WARN"},
		{"error", func(l *SlogLogger) { l.Error(context.Background(), "m") }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBufferLogger()
			tt.log(l)
			m := decodeLine(t, buf)
			if m["level"] != tt.level {
				t.Fatalf("expected level %q, got %v", tt.level, m["level"])
			}
			if m["msg"] != "m" {
				t.Fatalf("unexpected msg: %v", m["msg"])
			}
		})
	}
}

func TestSlogLogger_WithAddsAttributes(t *testing.T) {
	l, buf := newBufferLogger()

	child := l.With("module", "httpapi")
	child.Info(context.Background(), "started", "addr", ":8080")

	m := decodeLine(t, buf)
	if m["module"] != "httpapi" {
		t.Fatalf("expected module attribute from With, got %v", m["module"])
	}
	if m["addr"] != ":8080" {
		t.Fatalf("expected addr attribute, got %v", m["addr"])
	}
}
