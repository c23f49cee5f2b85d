// Provides the slog handlers used by the cruxpkg CLI and daemon.
//
// Two formats are supported. [FormatText] renders terse lines meant for a
// terminal, with the level and message first and attributes after; in
// verbose mode each line is prefixed with a timestamp. [FormatJSON] emits
// one JSON object per record for log collectors.
//
//	level := new(slog.LevelVar)
//	slog.SetDefault(logging.New(os.Stderr, logging.Options{Level: level}))
//	level.Set(slog.LevelDebug)
package logging
