// Package log tags slog records with the emitting component so one server
// process produces a filterable stream.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger whose records always carry a component attribute.
// The attribute is bound once at construction, not appended per call.
type Logger struct {
	*slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

func New(cfg Config) *Logger {
	h := cfg.Handler
	if h == nil {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}
	component := cfg.Component
	if component == "" {
		component = ComponentApp
	}
	return &Logger{
		Logger:    slog.New(h).With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger with extra attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// Component reports which component this logger was built for.
func (l *Logger) Component() string {
	return l.component
}
