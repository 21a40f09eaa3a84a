package main

import (
	"os"

	applog "github.com/vovakirdan/pushrelay/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := applog.NewTo(os.Stderr, "error")
		logger.Error().Err(err).Msg("relay exited with error")
		os.Exit(1)
	}
}
