package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// Console receives human-readable output. Defaults to stdout.
	Console io.Writer
	Color   bool
	// File, when set, additionally receives JSON lines, rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly, NoColor: true}).
		With().Timestamp().Logger()
	closer io.Closer
)

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New builds a logger from opts. The returned closer releases the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly, NoColor: !opts.Color}

	var fileCloser io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		out = zerolog.MultiLevelWriter(out, rotator)
		fileCloser = rotator
	}

	l := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(opts.Level))
	return l, fileCloser
}

// InitLogger replaces the package logger and returns it.
func InitLogger(opts Options) zerolog.Logger {
	l, c := New(opts)
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
	}
	logger, closer = l, c
	return l
}

// Close releases the log file opened by InitLogger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func SetLoggerForTest(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func Debug(msg string, kv ...any) { write(zerolog.DebugLevel, msg, kv) }
func Info(msg string, kv ...any)  { write(zerolog.InfoLevel, msg, kv) }
func Error(msg string, kv ...any) { write(zerolog.ErrorLevel, msg, kv) }

func write(level zerolog.Level, msg string, kv []any) {
	l := Logger()
	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
