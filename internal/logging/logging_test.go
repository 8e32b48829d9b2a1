package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn %d", 1)
	l.Error("error")

	out := buf.String()
	if strings.Contains(out, "debug") || strings.Contains(out, "] info") {
		t.Errorf("low-level messages should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 1") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})

	l.WithComponent("source").WithField("id", 7).Info("started")

	out := buf.String()
	if !strings.Contains(out, "test: started {component=source, id=7}") {
		t.Errorf("unexpected line: %q", out)
	}
}

func TestLogger_ChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})
	child := l.WithComponent("x")

	if !child.Enabled(LevelDebug) {
		t.Error("child should inherit debug level")
	}
	l.SetLevel(LevelError)
	if !l.Enabled(LevelError) || l.Enabled(LevelWarn) {
		t.Error("SetLevel should change filtering")
	}
}

func TestNull(t *testing.T) {
	l := Null()
	l.Error("nothing %s", "here")
	if l.Enabled(LevelError) {
		t.Error("null logger should be disabled")
	}
	if OrNull(nil) == nil {
		t.Error("OrNull(nil) should not return nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
