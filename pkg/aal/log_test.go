// ABOUTME: Tests for the logging shim
// ABOUTME: Covers line format, level filtering and set-once sink semantics
package aal

import (
	"strings"
	"sync"
	"testing"
)

// resetLog restores the process-wide logging state between tests
func resetLog() {
	logMu.Lock()
	defer logMu.Unlock()
	logFunc = nil
	logSet = false
	logLevel = LogVerbose
}

type logCapture struct {
	mu     sync.Mutex
	lines  []string
	levels []LogLevel
}

func (c *logCapture) fn(level LogLevel, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
	c.levels = append(c.levels, level)
}

func (c *logCapture) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func captureLog(t *testing.T) *logCapture {
	t.Helper()
	resetLog()
	t.Cleanup(resetLog)
	c := &logCapture{}
	if !SetLogFunc(c.fn) {
		t.Fatal("SetLogFunc refused first sink")
	}
	return c
}

func TestLogfFormat(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogVerbose, "[AAL] V hello 1"},
		{LogInfo, "[AAL] I hello 1"},
		{LogMetric, "[AAL] M hello 1"},
		{LogWarn, "[AAL] W hello 1"},
		{LogError, "[AAL] E hello 1"},
		{LogCritical, "[AAL] C hello 1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := captureLog(t)
			Logf(tt.level, "hello %d", 1)

			lines := c.all()
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if lines[0] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, lines[0])
			}
			if c.levels[0] != tt.level {
				t.Errorf("expected level %v, got %v", tt.level, c.levels[0])
			}
		})
	}
}

func TestLogfFiltersBelowLevel(t *testing.T) {
	c := captureLog(t)
	SetLogLevel(LogWarn)

	Logf(LogInfo, "dropped")
	Logf(LogWarn, "kept")
	Logf(LogCritical, "kept too")

	lines := c.all()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	for _, line := range lines {
		if strings.Contains(line, "dropped") {
			t.Errorf("line below threshold was emitted: %q", line)
		}
	}
}

func TestSetLogFuncOnlyOnce(t *testing.T) {
	first := captureLog(t)
	second := &logCapture{}

	if SetLogFunc(second.fn) {
		t.Error("second SetLogFunc should be refused")
	}

	Logf(LogInfo, "x")
	if len(first.all()) != 1 {
		t.Error("first sink should still receive lines")
	}
	if len(second.all()) != 0 {
		t.Error("second sink should receive nothing")
	}
}

func TestSetLogFuncNilKeepsStdout(t *testing.T) {
	resetLog()
	t.Cleanup(resetLog)

	if !SetLogFunc(nil) {
		t.Fatal("first SetLogFunc should succeed")
	}
	// Falls back to stdout; must not panic
	Logf(LogInfo, "to stdout")

	if SetLogFunc(func(LogLevel, string) {}) {
		t.Error("sink already set, even though nil")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"verbose", LogVerbose, false},
		{"info", LogInfo, false},
		{"M", LogMetric, false},
		{"warning", LogWarn, false},
		{"e", LogError, false},
		{"critical", LogCritical, false},
		{"loud", LogVerbose, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
