// Package logtrace wires up the global zerolog logger and the trace switch
// used by the HTTP server.
package logtrace

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger: stderr output, Unix timestamps,
// and a level taken from OFFERD_LOG_LEVEL. Defaults to info when the
// variable is unset or unparseable.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(os.Getenv("OFFERD_LOG_LEVEL")); err == nil && l != zerolog.NoLevel {
		level = l
	}
	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
