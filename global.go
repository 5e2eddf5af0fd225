package main

import (
	"fmt"

	"github.com/fd0/wmconf/internal/logger"
	"go.uber.org/zap"
)

var version = "compiled manually"
var compiledAt = "unknown time"

var (
	verboseOutput bool
	debugOutput   bool
	logFormat     string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verboseOutput,
		"verbose", "v", false, "be verbose")
	RootCmd.PersistentFlags().BoolVar(&debugOutput,
		"debug", false, "print debug messages")
	RootCmd.PersistentFlags().Var(newChoice(&logFormat, "console", "console", "json"),
		"log-format", "format of log messages (console, json)")
}

// log receives the diagnostics of the parser.
var log = zap.NewNop()

// initLogger creates the logger according to the global flags.
func initLogger() error {
	cfg := logger.Config{
		Level:    "warn",
		Encoding: logFormat,
	}

	switch {
	case debugOutput:
		cfg.Level = "debug"
		cfg.Development = true
	case verboseOutput:
		cfg.Level = "info"
	}

	l, err := logger.New(cfg)
	if err != nil {
		return err
	}

	log = l
	return nil
}

func syncLogger() {
	// errors syncing stderr are expected on some platforms
	_ = log.Sync()
}

// V prints the message when verbose is active.
func V(format string, args ...interface{}) {
	if !verboseOutput {
		return
	}

	fmt.Printf(format, args...)
}

// D prints the message when debug is active.
func D(format string, args ...interface{}) {
	if !debugOutput {
		return
	}

	fmt.Printf(format, args...)
}
