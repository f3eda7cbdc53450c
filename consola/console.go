// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package consola

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tel84/instruments/lib/bus"
	"github.com/tel84/instruments/lib/clock"
	"github.com/tel84/instruments/pointing"
)

// DefaultPublishInterval is the wait between position publishes.
const DefaultPublishInterval = 700 * time.Millisecond

// Topics names the MQTT topics the console uses.
type Topics struct {
	Zenith   string
	Move     string
	Position string
}

// DefaultTopics returns the observatory's console topics.
func DefaultTopics() Topics {
	return Topics{
		Zenith:   "telescopio/tel84/instrumentos/consola/zenith",
		Move:     "telescopio/tel84/instrumentos/consola/mueve",
		Position: "telescopio/tel84/instrumentos/consola/posicion",
	}
}

// Console tracks the commanded target and publishes its horizontal
// position.
type Console struct {
	Bus    bus.Bus
	Topics Topics

	// Site is the observing location. The zero Site means
	// pointing.SanPedroMartir().
	Site pointing.Site

	// Clock supplies the publish ticker and the instant each position
	// is computed for. Defaults to clock.Real().
	Clock clock.Clock

	PublishInterval time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	mu     sync.Mutex
	target *target
}

// target is either the zenith or an equatorial coordinate.
type target struct {
	zenith     bool
	coordinate pointing.Equatorial
}

// moveCommand is the mueve payload. Each field is a string in any form
// pointing.ParseEquatorial accepts, or a number of degrees.
type moveCommand struct {
	RightAscension json.RawMessage `json:"ar"`
	Declination    json.RawMessage `json:"dec"`
}

// positionReport is the payload published on the position topic.
type positionReport struct {
	Altitude string `json:"altitude"`
	Azimuth  string `json:"azimuth"`
}

func (c *Console) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Console) clock() clock.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return clock.Real()
}

func (c *Console) site() pointing.Site {
	if c.Site == (pointing.Site{}) {
		return pointing.SanPedroMartir()
	}
	return c.Site
}

func (c *Console) publishInterval() time.Duration {
	if c.PublishInterval > 0 {
		return c.PublishInterval
	}
	return DefaultPublishInterval
}

// Run subscribes to the command topics and publishes the target's
// position until ctx is cancelled. It returns an error only if setup
// fails.
func (c *Console) Run(ctx context.Context) error {
	if c.Bus == nil {
		return fmt.Errorf("consola: Bus is required")
	}
	if c.Topics == (Topics{}) {
		c.Topics = DefaultTopics()
	}

	err := c.Bus.Subscribe(ctx, c.Topics.Zenith, func(_ context.Context, _ bus.Message) {
		c.setTarget(&target{zenith: true})
		c.logger().Info("target set to zenith")
	})
	if err != nil {
		return fmt.Errorf("consola: %w", err)
	}
	err = c.Bus.Subscribe(ctx, c.Topics.Move, func(_ context.Context, message bus.Message) {
		c.handleMove(message)
	})
	if err != nil {
		return fmt.Errorf("consola: %w", err)
	}

	site := c.site()
	c.logger().Info("console running",
		"latitude", site.Latitude,
		"longitude", site.Longitude,
		"position_topic", c.Topics.Position,
		"publish_interval", c.publishInterval(),
	)

	ticker := c.clock().NewTicker(c.publishInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.publishPosition(ctx)
		}
	}
}

func (c *Console) setTarget(next *target) {
	c.mu.Lock()
	c.target = next
	c.mu.Unlock()
}

func (c *Console) handleMove(message bus.Message) {
	coordinate, err := parseMove(message.Payload)
	if err != nil {
		c.logger().Warn("dropping mueve command", "payload", string(message.Payload), "error", err)
		return
	}
	c.setTarget(&target{coordinate: coordinate})
	c.logger().Info("target set",
		"right_ascension", pointing.FormatHours(coordinate.RightAscension),
		"declination", coordinate.Declination,
	)
}

// Position returns the target's horizontal position at instant, and
// false when no command has been received.
func (c *Console) Position(instant time.Time) (pointing.Horizontal, bool) {
	c.mu.Lock()
	current := c.target
	c.mu.Unlock()

	switch {
	case current == nil:
		return pointing.Horizontal{}, false
	case current.zenith:
		return pointing.Zenith(), true
	default:
		return c.site().ToHorizontal(current.coordinate, instant), true
	}
}

func (c *Console) publishPosition(ctx context.Context) {
	position, ok := c.Position(c.clock().Now())
	if !ok {
		return
	}
	report, _ := json.Marshal(positionReport{
		Altitude: pointing.FormatHours(position.Altitude),
		Azimuth:  pointing.FormatHours(position.Azimuth),
	})
	if err := c.Bus.Publish(ctx, c.Topics.Position, report, true); err != nil {
		c.logger().Warn("publishing position failed", "error", err)
		return
	}
	c.logger().Debug("position published", "altitude", position.Altitude, "azimuth", position.Azimuth)
}

func parseMove(payload []byte) (pointing.Equatorial, error) {
	var command moveCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		return pointing.Equatorial{}, fmt.Errorf("decoding mueve payload: %w", err)
	}
	rightAscension, err := angleText("ar", command.RightAscension)
	if err != nil {
		return pointing.Equatorial{}, err
	}
	declination, err := angleText("dec", command.Declination)
	if err != nil {
		return pointing.Equatorial{}, err
	}
	return pointing.ParseEquatorial(rightAscension, declination)
}

// angleText returns a JSON string field as is, or a JSON number
// rendered as decimal degrees.
func angleText(field string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%s: missing field", field)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", fmt.Errorf("%s: expected a string or a number, got %s", field, raw)
	}
	return strconv.FormatFloat(number, 'f', -1, 64), nil
}
