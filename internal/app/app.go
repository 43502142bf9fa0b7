package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/boreimp/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Results go to outW
// and logs to logW, so a sweep can be piped while progress stays visible.
// A nil logW silences logging.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := ctxlog.Discard()
	if logW != nil {
		logger = newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	}
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, logger: logger, config: cfg}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
