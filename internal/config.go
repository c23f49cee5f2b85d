package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool
	debugMode   atomic.Bool
	verboseMode atomic.Bool
)

// Seeds the modes from the linker variables. Unparseable values leave a
// mode disabled.
func init() {
	for _, m := range []struct {
		raw  string
		mode *atomic.Bool
	}{
		{rawQuiet, &quietMode},
		{rawDebug, &debugMode},
		{rawVerbose, &verboseMode},
	} {
		v, _ := strconv.ParseBool(m.raw)
		m.mode.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) { quietMode.Store(enabled) }

// Enables or disables debug mode.
func SetDebug(enabled bool) { debugMode.Store(enabled) }

// Enables or disables verbose logging.
func SetVerbose(enabled bool) { verboseMode.Store(enabled) }

func IsQuiet() bool { return quietMode.Load() }

func IsDebug() bool { return debugMode.Load() }

func IsVerbose() bool { return verboseMode.Load() }

// Returns the log level implied by the current modes.
//
// Debug takes precedence over quiet.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
