package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logMu  sync.RWMutex
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// InitLogger sets up the global logger. Output always goes to stdout and,
// when file is not empty, also to a size-rotated log file.
func InitLogger(file string, maxSizeMB, maxBackups, maxAgeDays int, compress bool, level string) {
	var out io.Writer = os.Stdout
	if file != "" {
		out = zerolog.MultiLevelWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   compress,
		})
	}

	l := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(level))

	logMu.Lock()
	logger = l
	logMu.Unlock()
}

// SetLogLevel changes the minimum level. Unknown levels fall back to info.
func SetLogLevel(level string) {
	logMu.Lock()
	logger = logger.Level(parseLevel(level))
	logMu.Unlock()
}

// SetLoggerForTest replaces the global logger.
func SetLoggerForTest(l zerolog.Logger) {
	logMu.Lock()
	logger = l
	logMu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func Info(msg string, kv ...interface{}) {
	logEvent(zerolog.InfoLevel, msg, kv)
}

func Warn(msg string, kv ...interface{}) {
	logEvent(zerolog.WarnLevel, msg, kv)
}

func Error(msg string, kv ...interface{}) {
	logEvent(zerolog.ErrorLevel, msg, kv)
}

func logEvent(level zerolog.Level, msg string, kv []interface{}) {
	logMu.RLock()
	l := logger
	logMu.RUnlock()

	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			ev = ev.Str(key, "(MISSING)")
			break
		}
		switch v := kv[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
