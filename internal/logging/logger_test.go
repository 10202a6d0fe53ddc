package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelWarn)

	l.Debugf("debug message")
	l.Infof("info message")
	l.Warnf("warn message")
	l.Errorf("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("WARN-level logger emitted lower-level messages: %q", out)
	}
	if !strings.Contains(out, "WARN warn message") {
		t.Errorf("missing warn message: %q", out)
	}
	if !strings.Contains(out, "ERROR error message") {
		t.Errorf("missing error message: %q", out)
	}
}

func TestDebugLevelEmitsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug)

	l.Debugf(NSSegment+"opened segment %d", 7)
	l.Infof(NSReader + "replay done")

	out := buf.String()
	if !strings.Contains(out, "DEBUG [segment] opened segment 7") {
		t.Errorf("missing namespaced debug message: %q", out)
	}
	if !strings.Contains(out, "INFO [reader] replay done") {
		t.Errorf("missing namespaced info message: %q", out)
	}
}

func TestDefaultLoggerLevel(t *testing.T) {
	l := NewDefaultLogger(LevelInfo)
	if l.Level() != LevelInfo {
		t.Errorf("Level() = %v, want LevelInfo", l.Level())
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic.
	Discard.Errorf("e")
	Discard.Warnf("w")
	Discard.Infof("i")
	Discard.Debugf("d")
}

func TestIsNil(t *testing.T) {
	if !IsNil(nil) {
		t.Error("IsNil(nil) = false")
	}

	var typed *DefaultLogger
	var iface Logger = typed
	if !IsNil(iface) {
		t.Error("IsNil(typed-nil) = false")
	}

	if IsNil(Discard) {
		t.Error("IsNil(Discard) = true")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) != Discard {
		t.Error("OrDiscard(nil) != Discard")
	}

	var typed *DefaultLogger
	if OrDiscard(typed) != Discard {
		t.Error("OrDiscard(typed-nil) != Discard")
	}

	l := NewDefaultLogger(LevelError)
	if OrDiscard(l) != Logger(l) {
		t.Error("OrDiscard(valid) did not return the logger")
	}
}
