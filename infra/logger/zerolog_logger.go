package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

type options struct {
	level  zerolog.Level
	writer io.Writer
}

// Option configures NewZerologLogger.
type Option func(*options)

// WithLevel sets the minimum level. Unknown names keep the default (info).
func WithLevel(level string) Option {
	return func(o *options) {
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
			o.level = l
		}
	}
}

// WithWriter redirects the output, mostly for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string, opts ...Option) Logger {
	o := options{level: zerolog.InfoLevel, writer: os.Stdout}
	for _, fn := range opts {
		fn(&o)
	}
	w := o.writer
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(o.level).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (l *ZerologLogger) With(fields map[string]any) Logger {
	return &ZerologLogger{log: l.log.With().Fields(fields).Logger()}
}
