// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is an immutable value: options are applied when it is created
// with [Make] or derived with [Logger.Wrap], and derived loggers never affect
// their parent.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("registry loaded", slog.Int("lists", 12))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// # Package Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that is reconfigured with [Config]. The command line
// interface calls [Config] while flags are parsed so that even flag errors
// are reported in the requested format.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-resolution detail
// in the list engine.
package log
