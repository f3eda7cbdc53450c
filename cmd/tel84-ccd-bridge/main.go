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

	"github.com/tel84/instruments/ccdbridge"
	"github.com/tel84/instruments/lib/bus"
	"github.com/tel84/instruments/lib/ccdclient"
	"github.com/tel84/instruments/lib/cli"
	"github.com/tel84/instruments/lib/version"
)

const usage = `tel84-ccd-bridge - relay CCD commands and telemetry over MQTT

USAGE
    tel84-ccd-bridge [flags]

The instrument address, broker, topics and intervals come from the
configuration file; --instrument and --broker override the first two.
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags cli.CommonFlags
	var instrumentAddr, broker string

	flagSet := pflag.NewFlagSet("tel84-ccd-bridge", pflag.ContinueOnError)
	flags.AddFlags(flagSet)
	flagSet.StringVar(&instrumentAddr, "instrument", "", "instrument server address (overrides ccd_client.address)")
	flagSet.StringVar(&broker, "broker", "", "MQTT broker URL (overrides mqtt.broker)")

	if done, err := flags.Parse(flagSet, os.Args[1:], os.Stdout, usage); done || err != nil {
		return err
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	if instrumentAddr != "" {
		cfg.CCDClient.Address = instrumentAddr
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = bus.NewClientID("tel84-ccd-bridge")
	}

	logger := cli.NewLogger(os.Stderr, flags.Verbose)
	logger.Info("starting tel84-ccd-bridge", "version", version.Info())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	messages, err := bus.Dial(ctx, bus.MQTTOptions{
		Broker:         cfg.MQTT.Broker,
		ClientID:       clientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		QoS:            cfg.MQTT.QoS,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer messages.Close()

	client := ccdclient.New(cfg.CCDClient.Address, ccdclient.Options{
		DialTimeout:    cfg.CCDClient.DialTimeout,
		RequestTimeout: cfg.CCDClient.RequestTimeout,
		Logger:         logger,
	})
	defer client.Close()

	bridge := &ccdbridge.Bridge{
		Bus:        messages,
		Instrument: client,
		Topics: ccdbridge.Topics{
			Initialize:  cfg.Topics.CCDInitialize,
			Expose:      cfg.Topics.CCDExpose,
			Progress:    cfg.Topics.CCDProgress,
			Temperature: cfg.Topics.CCDTemperature,
			Status:      cfg.Topics.CCDStatus,
		},
		PollInterval:      cfg.Bridge.PollInterval,
		TelemetryInterval: cfg.Bridge.TelemetryInterval,
		Logger:            logger,
	}
	if err := bridge.Run(ctx); err != nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}
