package main

import (
	"os"

	"github.com/audioqc/audioqc/cmd"
	"github.com/audioqc/audioqc/cmd/check"
	"github.com/audioqc/audioqc/internal/conf"
	"github.com/audioqc/audioqc/internal/errors"
	"github.com/audioqc/audioqc/internal/logging"
)

func main() {
	settings := &conf.Settings{}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, check.ErrChecksFailed) {
			os.Exit(1)
		}
		logging.Error("command failed", "error", err)
		os.Exit(2)
	}
}
