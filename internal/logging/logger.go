// Package logging adapts zerolog to the field-map Logger used by the client.
package logging

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by Config.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config configures a Logger.
type Config struct {
	Level   string `yaml:"level"    mapstructure:"level"`
	Format  string `yaml:"format"   mapstructure:"format"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`

	// Output defaults to stderr so command output on stdout stays clean.
	Output io.Writer `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = FormatConsole
	}

	if c.Output == nil {
		c.Output = os.Stderr
	}
}

// Logger implements rest.Logger on top of zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger from cfg. An unknown level falls back to info.
func New(cfg Config) *Logger {
	cfg.ApplyDefaults()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if strings.ToLower(cfg.Format) == FormatJSON {
		zl = zerolog.New(cfg.Output)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        cfg.Output,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		})
	}

	return &Logger{logger: zl.Level(level).With().Timestamp().Logger()}
}

// NewWithLogger wraps an existing zerolog.Logger.
func NewWithLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	write(l.logger.Debug(), msg, fields)
}

// Info logs an info-level message.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	write(l.logger.Info(), msg, fields)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	write(l.logger.Warn(), msg, fields)
}

// Error logs an error-level message.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	write(l.logger.Error(), msg, fields)
}

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// write emits fields in key order so output is stable.
func write(event *zerolog.Event, msg string, fields map[string]interface{}) {
	if event == nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		event = addField(event, key, fields[key])
	}

	event.Msg(msg)
}

func addField(event *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return event.Str(key, v)
	case int:
		return event.Int(key, v)
	case int64:
		return event.Int64(key, v)
	case float64:
		return event.Float64(key, v)
	case bool:
		return event.Bool(key, v)
	case time.Duration:
		return event.Dur(key, v)
	case error:
		return event.AnErr(key, v)
	default:
		return event.Interface(key, v)
	}
}
