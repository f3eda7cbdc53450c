// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tel84/instruments/lib/config"
	"github.com/tel84/instruments/lib/version"
)

// CommonFlags are the flags every binary accepts.
type CommonFlags struct {
	ConfigPath  string
	Verbose     bool
	ShowVersion bool
	ShowHelp    bool
}

// AddFlags registers the common flags on flagSet.
func (flags *CommonFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&flags.ConfigPath, "config", "c", "",
		"configuration file (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	flagSet.BoolVar(&flags.ShowVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&flags.ShowHelp, "help", "h", false, "show help")
}

// Parse parses args into flagSet. It returns done=true when the caller
// should exit successfully without running: help or version was
// requested and has been printed to output.
func (flags *CommonFlags) Parse(flagSet *pflag.FlagSet, args []string, output io.Writer, usage string) (done bool, err error) {
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			flags.ShowHelp = true
		} else {
			return false, err
		}
	}
	if flags.ShowVersion {
		fmt.Fprintf(output, "%s %s\n", flagSet.Name(), version.Info())
		return true, nil
	}
	if flags.ShowHelp {
		fmt.Fprint(output, usage)
		fmt.Fprintln(output, "\nFlags:")
		flagSet.SetOutput(output)
		flagSet.PrintDefaults()
		return true, nil
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return false, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return false, nil
}

// LoadConfig resolves and validates the configuration named by the
// --config flag, TEL84_CONFIG, or the built-in defaults.
func (flags *CommonFlags) LoadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a logger writing to file. When file is a terminal
// the output is human-readable text; otherwise it is JSON lines for log
// collectors. Verbose enables Debug level.
func NewLogger(file *os.File, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(file.Fd())) {
		handler = slog.NewTextHandler(file, options)
	} else {
		handler = slog.NewJSONHandler(file, options)
	}
	return slog.New(handler)
}
