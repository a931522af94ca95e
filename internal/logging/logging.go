package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. Logs go to stderr; stdout belongs to
// the plugin protocol.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
