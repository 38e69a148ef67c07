package utils

import (
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel enumerates severity tiers.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLogLevel maps a config/flag string to a LogLevel. Unknown values map to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zap.DebugLevel
	case WARN:
		return zap.WarnLevel
	case ERROR:
		return zap.ErrorLevel
	case FATAL:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// Logger is a concurrency-safe, levelled logger used across the pipeline.
// It wraps a zap SugaredLogger and keeps printf-style call sites.
type Logger struct {
	mu    sync.RWMutex
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
}

var (
	globalLogger atomic.Pointer[Logger]
	logOnce      sync.Once
)

// InitLogger creates the singleton logger. Call once at startup.
// Output always goes to stdout; logFilePath adds a second sink when set.
func InitLogger(minLevel LogLevel, logFilePath string) *Logger {
	logOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(minLevel.zapLevel())
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
		cfg.Sampling = nil
		cfg.OutputPaths = []string{"stdout"}
		if logFilePath != "" {
			cfg.OutputPaths = append(cfg.OutputPaths, logFilePath)
		}

		base, err := cfg.Build()
		if err != nil {
			// fall back to stdout only if the log file could not be opened
			cfg.OutputPaths = []string{"stdout"}
			base, _ = cfg.Build()
			base.Sugar().Warnf("could not open log file %s: %v", logFilePath, err)
		}

		globalLogger.Store(&Logger{
			level: cfg.Level,
			sugar: base.Sugar(),
		})
	})
	return globalLogger.Load()
}

// L returns the global logger, initialising a stdout-only DEBUG logger
// if InitLogger has not been called.
func L() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return InitLogger(DEBUG, "")
}

// SetLogger replaces the underlying sugared logger. Passing nil installs a no-op logger.
func SetLogger(s *zap.SugaredLogger) {
	l := L()
	if s == nil {
		s = zap.NewNop().Sugar()
	}
	l.mu.Lock()
	l.sugar = s
	l.mu.Unlock()
}

// Sugar exposes the underlying zap logger for components that want structured fields.
func (l *Logger) Sugar() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}

// SetLevel adjusts the minimum level at runtime.
func (l *Logger) SetLevel(lvl LogLevel) {
	l.level.SetLevel(lvl.zapLevel())
}

// Close flushes any buffered log entries.
func (l *Logger) Close() {
	_ = l.Sugar().Sync()
}

func (l *Logger) Debug(f string, a ...any) { l.Sugar().Debugf(f, a...) }
func (l *Logger) Info(f string, a ...any)  { l.Sugar().Infof(f, a...) }
func (l *Logger) Warn(f string, a ...any)  { l.Sugar().Warnf(f, a...) }
func (l *Logger) Error(f string, a ...any) { l.Sugar().Errorf(f, a...) }
func (l *Logger) Fatal(f string, a ...any) { l.Sugar().Fatalf(f, a...) }
