// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Compile-time interface check.
var _ Bus = (*Memory)(nil)

// Memory is an in-process Bus. Publish delivers to matching handlers
// synchronously, in subscription order, after releasing the internal
// lock, so a handler may publish in turn.
type Memory struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	subscriptions []memorySubscription
	retained      map[string]Message
	published     []Message
	closed        bool
}

type memorySubscription struct {
	filter  string
	handler Handler
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	ctx, cancel := context.WithCancel(context.Background())
	return &Memory{
		ctx:      ctx,
		cancel:   cancel,
		retained: make(map[string]Message),
	}
}

func (m *Memory) Publish(_ context.Context, topic string, payload []byte, retain bool) error {
	message := Message{Topic: topic, Payload: slices.Clone(payload), Retained: retain}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.published = append(m.published, message)
	if retain {
		if len(payload) == 0 {
			// An empty retained payload clears the retained message.
			delete(m.retained, topic)
		} else {
			m.retained[topic] = message
		}
	}
	var handlers []Handler
	for _, subscription := range m.subscriptions {
		if TopicMatches(subscription.filter, topic) {
			handlers = append(handlers, subscription.handler)
		}
	}
	m.mu.Unlock()

	// Live deliveries carry Retained=false, as a broker does for
	// subscribers already connected.
	delivered := message
	delivered.Retained = false
	for _, handler := range handlers {
		handler(m.ctx, delivered)
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, filter string, handler Handler) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subscriptions = append(m.subscriptions, memorySubscription{filter: filter, handler: handler})
	var replay []Message
	for topic, message := range m.retained {
		if TopicMatches(filter, topic) {
			replay = append(replay, message)
		}
	}
	m.mu.Unlock()

	slices.SortFunc(replay, func(a, b Message) int { return strings.Compare(a.Topic, b.Topic) })
	for _, message := range replay {
		handler(m.ctx, message)
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.cancel()
	return nil
}

// Published returns every message published so far, in order.
func (m *Memory) Published() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.published)
}

// PublishedTo returns the messages published to topic, in order.
func (m *Memory) PublishedTo(topic string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var messages []Message
	for _, message := range m.published {
		if message.Topic == topic {
			messages = append(messages, message)
		}
	}
	return messages
}

// Retained returns the retained message for topic, if any.
func (m *Memory) Retained(topic string) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	message, ok := m.retained[topic]
	return message, ok
}
