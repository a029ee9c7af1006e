package log

import (
	"context"
	"log/slog"
	"os"
)

// SetupLogger installs the default JSON slog logger at the given level.
// Output goes to stderr so metric banners on stdout stay machine-readable.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))

	if _, ok := logLevels[loglevel]; !ok {
		slog.Warn("unrecognized log level, using info", "level", loglevel)
	}
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ToLogLevel converts a level name to a slog.Level. Unrecognized names fall
// back to info; the level comes from user configuration and a typo should not
// abort the run.
func ToLogLevel(level string) slog.Level {
	if l, ok := logLevels[level]; ok {
		return l
	}
	return slog.LevelInfo
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

// overrideLogger, when set, is handed out instead of the slog default.
var overrideLogger Logger

// SetLoggerForTesting routes GetLogger and GetLoggerWithName to l until the
// returned restore function is called. Tests use it with a TestLogger to
// capture the structured fields components emit.
func SetLoggerForTesting(l Logger) (restore func()) {
	prev := overrideLogger
	overrideLogger = l
	return func() { overrideLogger = prev }
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	if overrideLogger != nil {
		return overrideLogger
	}
	return &slogLogger{l: slog.Default()}
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	if overrideLogger != nil {
		return overrideLogger.With(ComponentKey, name)
	}
	return &slogLogger{l: slog.Default().With(ComponentKey, name)}
}
