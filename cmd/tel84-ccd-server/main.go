// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tel84/instruments/ccdserver"
	"github.com/tel84/instruments/device"
	"github.com/tel84/instruments/lib/cli"
	"github.com/tel84/instruments/lib/version"
)

const usage = `tel84-ccd-server - simulated CCD instrument server

USAGE
    tel84-ccd-server [flags]

EXAMPLES
    # Listen on the default 127.0.0.1:8888
    tel84-ccd-server

    # Listen on every interface with a lab configuration
    tel84-ccd-server --config lab.yaml --listen 0.0.0.0:8888
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags cli.CommonFlags
	var listenAddr string

	flagSet := pflag.NewFlagSet("tel84-ccd-server", pflag.ContinueOnError)
	flags.AddFlags(flagSet)
	flagSet.StringVarP(&listenAddr, "listen", "l", "", "TCP address to listen on (overrides server.listen_addr)")

	if done, err := flags.Parse(flagSet, os.Args[1:], os.Stdout, usage); done || err != nil {
		return err
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	logger := cli.NewLogger(os.Stderr, flags.Verbose)
	logger.Info("starting tel84-ccd-server", "version", version.Info())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	instrument := device.New(ctx, device.Options{
		Logger:         logger,
		TickInterval:   cfg.Server.TickInterval,
		TemperatureMin: cfg.Server.TemperatureMin,
		TemperatureMax: cfg.Server.TemperatureMax,
	})

	server := &ccdserver.Server{
		ListenAddr:    cfg.Server.ListenAddr,
		Instrument:    instrument,
		MaxLineLength: cfg.Server.MaxLineLength,
		Logger:        logger,
	}
	if err := server.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	server.Stop()
	return nil
}
