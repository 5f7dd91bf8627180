// Package logging sets up structured logging for the application.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a structured logger tagged with the service name. A nil output
// defaults to stderr.
func New(service string, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(output).With().
		Timestamp().
		Str("service", service).
		Logger()
}
