package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/kulaginds/inflate/internal/config"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: ", err)
		os.Exit(usageExitCode(err))
	}

	if cfg.CLI.Debug {
		logrus.Info("debug mode enabled")
		logrus.SetLevel(logrus.DebugLevel)
	}

	displayConfig(cfg)

	os.Exit(run(cfg.CLI, os.Stdin, os.Stdout))
}

func displayConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	logrus.Debug("rtgz settings:")
	logrus.Debugf("  version: %s", config.VERSION)
	logrus.Debugf("  config file: %s", cfg.CLI.ConfigFile)
	logrus.Debugf("  compress: %v", cfg.CLI.Compress)
	logrus.Debugf("  decompress: %v", cfg.CLI.Decompress)
	logrus.Debugf("  input: %s", cfg.CLI.Input)
	logrus.Debugf("  output: %s", cfg.CLI.Output)
	logrus.Debugf("  window bits: %d", cfg.CLI.WindowBits)
	logrus.Debugf("  level: %d", cfg.CLI.Level)
	logrus.Debugf("  format: %s", cfg.CLI.Format)
	logrus.Debugf("  max size: %d", cfg.CLI.MaxSize)
}
