package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger so callers can use the promoted log methods
// directly or pull out the embedded Logger for injection into components.
type Logger struct {
	zerolog.Logger
}

// New builds the process root logger. Unknown levels fall back to info.
// With pretty enabled, output goes through a console writer for local runs;
// otherwise structured JSON is written to stdout.
func New(level string, pretty bool) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return Logger{logger}
}

// Nop returns a disabled logger for tests and optional components.
func Nop() Logger {
	return Logger{zerolog.Nop()}
}
