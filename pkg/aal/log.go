// ABOUTME: Process-wide levelled logging shim
// ABOUTME: Routes "[AAL] <L> msg" lines to a sink set once, or to stdout
package aal

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// LogLevel orders log severity
type LogLevel int

const (
	LogVerbose LogLevel = iota
	LogInfo
	LogMetric
	LogWarn
	LogError
	LogCritical
)

func (l LogLevel) String() string {
	switch l {
	case LogVerbose:
		return "V"
	case LogInfo:
		return "I"
	case LogMetric:
		return "M"
	case LogWarn:
		return "W"
	case LogError:
		return "E"
	case LogCritical:
		return "C"
	default:
		return "?"
	}
}

// ParseLogLevel accepts level names such as "info" or single letters such as "W"
func ParseLogLevel(s string) (LogLevel, error) {
	switch s {
	case "verbose", "debug", "V", "v":
		return LogVerbose, nil
	case "info", "I", "i":
		return LogInfo, nil
	case "metric", "M", "m":
		return LogMetric, nil
	case "warn", "warning", "W", "w":
		return LogWarn, nil
	case "error", "E", "e":
		return LogError, nil
	case "critical", "C", "c":
		return LogCritical, nil
	}
	return LogVerbose, fmt.Errorf("unknown log level %q", s)
}

// LogFunc receives formatted log lines
type LogFunc func(level LogLevel, line string)

var (
	logMu     sync.Mutex
	logFunc   LogFunc
	logSet    bool
	logLevel  = LogVerbose
	stdLogger = log.New(os.Stdout, "", log.LstdFlags)
)

// SetLogFunc installs the log sink. Only the first call takes effect; later
// calls return false.
func SetLogFunc(fn LogFunc) bool {
	logMu.Lock()
	defer logMu.Unlock()

	if logSet {
		return false
	}
	logFunc = fn
	logSet = true
	return true
}

// SetLogLevel drops lines below level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
}

// Logf formats and routes one line
func Logf(level LogLevel, format string, args ...any) {
	logMu.Lock()
	fn, threshold := logFunc, logLevel
	logMu.Unlock()

	if level < threshold {
		return
	}

	line := fmt.Sprintf("[AAL] %s %s", level, fmt.Sprintf(format, args...))
	if fn != nil {
		fn(level, line)
		return
	}
	stdLogger.Print(line)
}
