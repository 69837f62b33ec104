// Package logging builds the zerolog loggers used by the test
// infrastructure. Library callers pass their own logger through
// TranslatorOptions; nothing in the client constructs one implicitly.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to stdout at the given level. Console mode
// renders human-readable output for local debugging; otherwise lines are
// JSON.
func New(component, level string, console bool) (zerolog.Logger, error) {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var writer io.Writer = os.Stdout
	if console {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("component", component).
		Logger()

	return logger, nil
}
