// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tel84/instruments/lib/ccdclient"
	"github.com/tel84/instruments/lib/cli"
	"github.com/tel84/instruments/lib/monitorui"
)

const usage = `tel84-ccd-monitor - terminal dashboard for the CCD instrument

USAGE
    tel84-ccd-monitor [flags]

KEYS
    i    INIT with monitor.bin_x x monitor.bin_y
    e    EXPONE monitor.exposure_seconds
    r    refresh now
    q    quit
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags cli.CommonFlags
	var instrumentAddr, logOutput string

	flagSet := pflag.NewFlagSet("tel84-ccd-monitor", pflag.ContinueOnError)
	flags.AddFlags(flagSet)
	flagSet.StringVar(&instrumentAddr, "instrument", "", "instrument server address (overrides ccd_client.address)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")

	if done, err := flags.Parse(flagSet, os.Args[1:], os.Stdout, usage); done || err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	if instrumentAddr != "" {
		cfg.CCDClient.Address = instrumentAddr
	}

	// The screen belongs to the UI, so logs go to a file or nowhere.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if logOutput != "" {
		file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log output: %w", err)
		}
		defer file.Close()
		logger = cli.NewLogger(file, flags.Verbose)
	}

	client := ccdclient.New(cfg.CCDClient.Address, ccdclient.Options{
		DialTimeout:    cfg.CCDClient.DialTimeout,
		RequestTimeout: cfg.CCDClient.RequestTimeout,
		Logger:         logger,
	})
	defer client.Close()

	model := monitorui.NewModel(client, monitorui.Options{
		Address:         cfg.CCDClient.Address,
		BinX:            cfg.Monitor.BinX,
		BinY:            cfg.Monitor.BinY,
		ExposureSeconds: cfg.Monitor.ExposureSeconds,
		RefreshInterval: cfg.Monitor.RefreshInterval,
		RequestTimeout:  cfg.CCDClient.RequestTimeout,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
