package main

import (
	"os"

	"github.com/noahseger/ProtoScript/internal/logging"
	"github.com/noahseger/ProtoScript/internal/plugin"
)

func main() {
	logger := logging.New(os.Getenv("PROTOSCRIPT_LOG"), false)
	if err := plugin.Run(os.Stdin, os.Stdout, logger, nil); err != nil {
		logger.Error().Err(err).Msg("code generation failed")
		os.Exit(1)
	}
}
