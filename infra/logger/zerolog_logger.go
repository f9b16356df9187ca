package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds the logger for one component; every line carries a
// component field. APP_ENV=dev selects the human console writer, anything
// else emits JSON. APP_LOG_LEVEL caps verbosity (trace through disabled);
// unset or unparseable means nothing is filtered.
func NewZerologLogger(component string) Logger {
	z := zerolog.New(outputWriter()).
		Level(configuredLevel()).
		With().Timestamp().Str("component", component).
		Logger()
	return &ZerologLogger{log: z}
}

func outputWriter() io.Writer {
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

func configuredLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("APP_LOG_LEVEL")))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
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
