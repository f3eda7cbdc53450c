// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tel84/instruments/lib/bus"
	"github.com/tel84/instruments/lib/clock"
	"github.com/tel84/instruments/protocol"
)

// Defaults for Bridge fields left zero.
const (
	DefaultPollInterval      = time.Second
	DefaultTelemetryInterval = 5 * time.Second
)

// Instrument is the protocol surface the bridge drives. *ccdclient.Client
// implements it.
type Instrument interface {
	Init(ctx context.Context, binX, binY int) error
	Expose(ctx context.Context, seconds int) (string, error)
	Progress(ctx context.Context, id string) (int, error)
	Status(ctx context.Context) (string, error)
	Temperature(ctx context.Context) (float64, error)
}

// Topics names the MQTT topics the bridge uses.
type Topics struct {
	Initialize  string
	Expose      string
	Progress    string
	Temperature string
	Status      string
}

// DefaultTopics returns the observatory's CCD topics.
func DefaultTopics() Topics {
	return Topics{
		Initialize:  "telescopio/tel84/instrumentos/ccd/inicializa",
		Expose:      "telescopio/tel84/instrumentos/ccd/expone",
		Progress:    "telescopio/tel84/instrumentos/ccd/progreso",
		Temperature: "telescopio/tel84/instrumentos/ccd/status/temperatura",
		Status:      "telescopio/tel84/instrumentos/ccd/status",
	}
}

// Bridge relays commands from the bus to the instrument and telemetry
// from the instrument to the bus.
type Bridge struct {
	Bus        bus.Bus
	Instrument Instrument
	Topics     Topics

	// Clock drives polling and telemetry. Defaults to clock.Real().
	Clock clock.Clock

	// PollInterval is the wait between PROGRESO polls.
	PollInterval time.Duration

	// TelemetryInterval is the wait between TEMP/STATUS publishes.
	TelemetryInterval time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	mu       sync.Mutex
	stopped  bool
	trackers sync.WaitGroup
}

func (b *Bridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Bridge) clock() clock.Clock {
	if b.Clock != nil {
		return b.Clock
	}
	return clock.Real()
}

func (b *Bridge) pollInterval() time.Duration {
	if b.PollInterval > 0 {
		return b.PollInterval
	}
	return DefaultPollInterval
}

func (b *Bridge) telemetryInterval() time.Duration {
	if b.TelemetryInterval > 0 {
		return b.TelemetryInterval
	}
	return DefaultTelemetryInterval
}

// Run subscribes to the command topics and publishes telemetry until
// ctx is cancelled, then waits for running trackers to stop. It
// returns an error only if setup fails.
func (b *Bridge) Run(ctx context.Context) error {
	if b.Bus == nil {
		return fmt.Errorf("ccdbridge: Bus is required")
	}
	if b.Instrument == nil {
		return fmt.Errorf("ccdbridge: Instrument is required")
	}
	if b.Topics == (Topics{}) {
		b.Topics = DefaultTopics()
	}

	defer b.stop()

	err := b.Bus.Subscribe(ctx, b.Topics.Initialize, func(_ context.Context, message bus.Message) {
		b.handleInitialize(ctx, message)
	})
	if err != nil {
		return fmt.Errorf("ccdbridge: %w", err)
	}
	err = b.Bus.Subscribe(ctx, b.Topics.Expose, func(_ context.Context, message bus.Message) {
		b.handleExpose(ctx, message)
	})
	if err != nil {
		return fmt.Errorf("ccdbridge: %w", err)
	}

	b.logger().Info("ccd bridge running",
		"initialize_topic", b.Topics.Initialize,
		"expose_topic", b.Topics.Expose,
		"poll_interval", b.pollInterval(),
		"telemetry_interval", b.telemetryInterval(),
	)

	b.runTelemetry(ctx)
	return nil
}

// stop refuses new trackers and waits for the running ones.
func (b *Bridge) stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
	b.trackers.Wait()
}

func (b *Bridge) handleInitialize(ctx context.Context, message bus.Message) {
	binX, binY, err := parseInitialize(message.Payload)
	if err != nil {
		b.logger().Warn("dropping inicializa command", "payload", string(message.Payload), "error", err)
		return
	}
	if err := b.Instrument.Init(ctx, binX, binY); err != nil {
		b.logger().Error("INIT failed", "bin_x", binX, "bin_y", binY, "error", err)
		return
	}
	b.logger().Info("ccd initialized", "bin_x", binX, "bin_y", binY)
}

func (b *Bridge) handleExpose(ctx context.Context, message bus.Message) {
	seconds, err := parseExpose(message.Payload)
	if err != nil {
		b.logger().Warn("dropping expone command", "payload", string(message.Payload), "error", err)
		return
	}

	id, err := b.Instrument.Expose(ctx, seconds)
	if err != nil {
		if errors.Is(err, protocol.ErrAlreadyExposing) {
			b.logger().Warn("exposure rejected, ccd already exposing", "requested_seconds", seconds)
		} else {
			b.logger().Error("EXPONE failed", "requested_seconds", seconds, "error", err)
		}
		return
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.trackers.Add(1)
	b.mu.Unlock()

	b.logger().Info("exposure started", "exposure_id", id, "requested_seconds", seconds)
	go func() {
		defer b.trackers.Done()
		b.track(ctx, id)
	}()
}

// track polls one exposure and publishes its progress until it reaches
// 100, the instrument rejects the token, or ctx ends.
func (b *Bridge) track(ctx context.Context, id string) {
	logger := b.logger().With("exposure_id", id)
	ticker := b.clock().NewTicker(b.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		progress, err := b.Instrument.Progress(ctx, id)
		if err != nil {
			if errors.Is(err, protocol.ErrInvalidID) || errors.Is(err, protocol.ErrAlreadyExposing) {
				logger.Warn("instrument no longer tracks exposure", "error", err)
				return
			}
			if ctx.Err() != nil {
				return
			}
			logger.Warn("progress poll failed", "error", err)
			continue
		}

		payload := []byte(strconv.Itoa(progress))
		if err := b.Bus.Publish(ctx, b.Topics.Progress, payload, false); err != nil {
			logger.Warn("publishing progress failed", "error", err)
		}
		logger.Debug("exposure progress", "progress", progress)

		if progress >= 100 {
			logger.Info("exposure complete")
			return
		}
	}
}

func (b *Bridge) runTelemetry(ctx context.Context) {
	ticker := b.clock().NewTicker(b.telemetryInterval())
	defer ticker.Stop()

	for {
		b.publishTelemetry(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// publishTelemetry publishes one temperature report and one status
// literal. Either half failing does not skip the other.
func (b *Bridge) publishTelemetry(ctx context.Context) {
	celsius, err := b.Instrument.Temperature(ctx)
	if err != nil {
		if ctx.Err() == nil {
			b.logger().Warn("TEMP failed", "error", err)
		}
	} else {
		report, _ := json.Marshal(temperatureReport{
			Valor: protocol.FormatTemperature(celsius),
			TZ:    b.clock().Now().Unix(),
		})
		if err := b.Bus.Publish(ctx, b.Topics.Temperature, report, false); err != nil {
			b.logger().Warn("publishing temperature failed", "error", err)
		}
	}

	status, err := b.Instrument.Status(ctx)
	if err != nil {
		if ctx.Err() == nil {
			b.logger().Warn("STATUS failed", "error", err)
		}
		return
	}
	if err := b.Bus.Publish(ctx, b.Topics.Status, []byte(status), false); err != nil {
		b.logger().Warn("publishing status failed", "error", err)
	}
}
