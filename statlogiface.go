package edxdk

import (
	"fmt"
	"io"
	"os"
	"time"

	uuid "github.com/hashicorp/go-uuid"
	"github.com/rs/zerolog"
)

// Statter is the interface the pipelines use to report counts and timings.
type Statter interface {
	Count(name string, value int64, rate float64, tags ...string)
	Gauge(name string, value float64, rate float64, tags ...string)
	Histogram(name string, value float64, rate float64, tags ...string)
	Set(name string, value string, rate float64, tags ...string)
	Timing(name string, value time.Duration, rate float64, tags ...string)
}

// NopStatter does nothing.
type NopStatter struct{}

// Count does nothing.
func (NopStatter) Count(name string, value int64, rate float64, tags ...string) {}

// Gauge does nothing.
func (NopStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

// Histogram does nothing.
func (NopStatter) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set does nothing.
func (NopStatter) Set(name string, value string, rate float64, tags ...string) {}

// Timing does nothing.
func (NopStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {}

// Logger is the interface the pipelines log through.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// NopLogger logs nothing.
type NopLogger struct{}

// Printf does nothing.
func (NopLogger) Printf(format string, v ...interface{}) {}

// Debugf does nothing.
func (NopLogger) Debugf(format string, v ...interface{}) {}

// LogConfig configures NewLogger.
type LogConfig struct {
	Out     io.Writer // defaults to stderr
	Verbose bool      // emit Debugf output
	Pretty  bool      // human readable console output instead of JSON lines
	RunID   string    // attached to every line when set
}

// ZeroLogger is a Logger backed by zerolog.
type ZeroLogger struct {
	zlog zerolog.Logger
}

// NewLogger returns a zerolog backed Logger.
func NewLogger(cfg LogConfig) *ZeroLogger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	ctx := zerolog.New(out).Level(level).With().Timestamp().Str("service", "edxdk")
	if cfg.RunID != "" {
		ctx = ctx.Str("run", cfg.RunID)
	}
	return &ZeroLogger{zlog: ctx.Logger()}
}

// Printf logs at info level.
func (l *ZeroLogger) Printf(format string, v ...interface{}) {
	l.zlog.Info().Msgf(format, v...)
}

// Debugf logs at debug level.
func (l *ZeroLogger) Debugf(format string, v ...interface{}) {
	l.zlog.Debug().Msgf(format, v...)
}

// With returns a copy of the logger which adds key=val to every line.
func (l *ZeroLogger) With(key string, val interface{}) *ZeroLogger {
	return &ZeroLogger{zlog: l.zlog.With().Interface(key, val).Logger()}
}

// NewRunID returns an identifier for one pipeline run, used to correlate log
// lines.
func NewRunID() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id
}
