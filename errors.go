/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: logDate,
	}).With().Timestamp().Logger()
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Info().Msgf(format, args...)
}

// errorf is never gated on --verbose.
func errorf(format string, args ...any) {
	log.Error().Msgf(format, args...)
}
