// Package log builds component-scoped zerolog loggers.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level     zerolog.Level
	Component string
	Writer    io.Writer // defaults to stderr
	Pretty    bool      // human-readable console output
}

// DefaultConfig logs info and above to stderr in console form.
func DefaultConfig() Config {
	return Config{
		Level:     zerolog.InfoLevel,
		Component: ComponentApp,
		Writer:    os.Stderr,
		Pretty:    true,
	}
}

// New returns a logger tagged with the configured component.
func New(cfg Config) zerolog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	component := cfg.Component
	if component == "" {
		component = ComponentApp
	}
	return zerolog.New(w).
		Level(cfg.Level).
		With().
		Timestamp().
		Str(FieldComponent, component).
		Logger()
}

// Nop returns a logger that discards everything. Used as the zero value
// by packages that accept an optional logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithComponent derives a logger for a sub-component.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str(FieldComponent, component).Logger()
}
