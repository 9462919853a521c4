package main

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

// newLogger returns a console logger on w. Verbose enables V(1) messages,
// which is where the engine reports backward passes.
func newLogger(w io.Writer, verbose bool) logr.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	var output io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	if os.Getenv("MICROGRAD_LOG_JSON") != "" {
		output = w
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return zerologr.New(&zl)
}
