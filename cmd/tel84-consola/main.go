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

	"github.com/tel84/instruments/consola"
	"github.com/tel84/instruments/lib/bus"
	"github.com/tel84/instruments/lib/cli"
	"github.com/tel84/instruments/lib/version"
	"github.com/tel84/instruments/pointing"
)

const usage = `tel84-consola - telescope console pointing simulator

USAGE
    tel84-consola [flags]

COMMANDS (MQTT)
    .../consola/zenith    any payload: point at the zenith
    .../consola/mueve     {"ar": "10h21m00s", "dec": "+41d16m09s"}

POSITION (MQTT, retained)
    .../consola/posicion  {"altitude": "H:MM:SS.ss", "azimuth": "H:MM:SS.ss"}
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags cli.CommonFlags
	var broker string

	flagSet := pflag.NewFlagSet("tel84-consola", pflag.ContinueOnError)
	flags.AddFlags(flagSet)
	flagSet.StringVar(&broker, "broker", "", "MQTT broker URL (overrides mqtt.broker)")

	if done, err := flags.Parse(flagSet, os.Args[1:], os.Stdout, usage); done || err != nil {
		return err
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		return err
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = bus.NewClientID("tel84-consola")
	}

	logger := cli.NewLogger(os.Stderr, flags.Verbose)
	logger.Info("starting tel84-consola", "version", version.Info())

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

	console := &consola.Console{
		Bus: messages,
		Topics: consola.Topics{
			Zenith:   cfg.Topics.ConsolaZenith,
			Move:     cfg.Topics.ConsolaMove,
			Position: cfg.Topics.ConsolaPosition,
		},
		Site: pointing.Site{
			Latitude:  cfg.Consola.Latitude,
			Longitude: cfg.Consola.Longitude,
			Height:    cfg.Consola.Height,
		},
		PublishInterval: cfg.Consola.PublishInterval,
		Logger:          logger,
	}
	if err := console.Run(ctx); err != nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}
