// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"errors"
	"strings"
)

// ErrClosed is returned by operations on a closed Bus.
var ErrClosed = errors.New("bus: closed")

// Message is one delivered publication.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// Handler receives messages for a subscription. The context is
// cancelled when the Bus closes.
type Handler func(ctx context.Context, message Message)

// Bus publishes and subscribes to topics.
type Bus interface {
	// Publish sends payload to topic. A retained publication is kept
	// by the broker and replayed to later subscribers.
	Publish(ctx context.Context, topic string, payload []byte, retain bool) error

	// Subscribe registers handler for every message whose topic matches
	// filter. Filters may use the MQTT wildcards + and #.
	Subscribe(ctx context.Context, filter string, handler Handler) error

	// Close releases the connection. Handlers already running are not
	// waited for.
	Close() error
}

// TopicMatches reports whether topic matches the MQTT subscription
// filter. "+" matches exactly one level; a trailing "#" matches the
// parent level and everything below it.
func TopicMatches(filter, topic string) bool {
	filterLevels := strings.Split(filter, "/")
	topicLevels := strings.Split(topic, "/")

	for index, level := range filterLevels {
		if level == "#" {
			return index == len(filterLevels)-1
		}
		if index >= len(topicLevels) {
			return false
		}
		if level != "+" && level != topicLevels[index] {
			return false
		}
	}
	return len(filterLevels) == len(topicLevels)
}
