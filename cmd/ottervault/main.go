package main

import (
	"os"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/logger"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(int(clierr.HandleReturn(err, os.Stderr, logger.Get())))
	}
}
