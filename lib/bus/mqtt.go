// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Bus = (*MQTT)(nil)

// disconnectQuiesce is how long Close lets in-flight work finish, in
// milliseconds.
const disconnectQuiesce = 250

// MQTTOptions configures Dial.
type MQTTOptions struct {
	// Broker is the broker URL, e.g. "tcp://127.0.0.1:1883".
	Broker string

	// ClientID identifies the connection to the broker.
	ClientID string

	// Username and Password are sent when Username is non-empty.
	Username string
	Password string

	// QoS applies to every publish and subscription.
	QoS byte

	// ConnectTimeout bounds the initial connection. Defaults to 10s.
	ConnectTimeout time.Duration

	// Logger receives connection lifecycle events. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// MQTT is a Bus backed by an MQTT broker.
type MQTT struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	subscriptions map[string]Handler
	closed        bool
}

// NewClientID returns prefix followed by a short random suffix, so two
// running copies of one program do not take over each other's session.
func NewClientID(prefix string) string {
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")
	return prefix + "-" + suffix
}

// Dial connects to the broker and returns once the first connection is
// established, ctx is cancelled, or ConnectTimeout elapses.
func Dial(ctx context.Context, options MQTTOptions) (*MQTT, error) {
	if options.Broker == "" {
		return nil, fmt.Errorf("bus: broker URL is required")
	}
	if options.ConnectTimeout <= 0 {
		options.ConnectTimeout = 10 * time.Second
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	busCtx, cancel := context.WithCancel(context.Background())
	bus := &MQTT{
		qos:           options.QoS,
		timeout:       options.ConnectTimeout,
		logger:        options.Logger.With("broker", options.Broker, "client_id", options.ClientID),
		ctx:           busCtx,
		cancel:        cancel,
		subscriptions: make(map[string]Handler),
	}
	bus.client = mqtt.NewClient(bus.clientOptions(options))

	token := bus.client.Connect()
	if err := bus.wait(ctx, token); err != nil {
		cancel()
		bus.client.Disconnect(0)
		return nil, fmt.Errorf("bus: connecting to %s: %w", options.Broker, err)
	}
	return bus, nil
}

func (b *MQTT) clientOptions(options MQTTOptions) *mqtt.ClientOptions {
	clientOptions := mqtt.NewClientOptions().
		AddBroker(options.Broker).
		SetClientID(options.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectTimeout(options.ConnectTimeout).
		SetOrderMatters(false).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			b.logger.Warn("broker connection lost", "error", err)
		}).
		SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
			b.logger.Info("reconnecting to broker")
		})
	if options.Username != "" {
		clientOptions.SetUsername(options.Username)
		clientOptions.SetPassword(options.Password)
	}
	return clientOptions
}

// onConnect runs after every successful connection, including
// reconnects, and restores the subscriptions a clean session dropped.
func (b *MQTT) onConnect(client mqtt.Client) {
	b.logger.Info("connected to broker")

	b.mu.Lock()
	filters := make(map[string]Handler, len(b.subscriptions))
	for filter, handler := range b.subscriptions {
		filters[filter] = handler
	}
	b.mu.Unlock()

	for filter, handler := range filters {
		token := client.Subscribe(filter, b.qos, b.deliver(handler))
		if err := b.wait(b.ctx, token); err != nil {
			b.logger.Error("resubscribe failed", "filter", filter, "error", err)
		}
	}
}

func (b *MQTT) deliver(handler Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, message mqtt.Message) {
		handler(b.ctx, Message{
			Topic:    message.Topic(),
			Payload:  message.Payload(),
			Retained: message.Retained(),
		})
	}
}

// wait blocks until token completes, ctx ends, or the connect timeout
// elapses.
func (b *MQTT) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("timed out waiting for broker")
	}
}

func (b *MQTT) Publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	if b.isClosed() {
		return ErrClosed
	}
	if err := b.wait(ctx, b.client.Publish(topic, b.qos, retain, payload)); err != nil {
		return fmt.Errorf("bus: publishing to %s: %w", topic, err)
	}
	return nil
}

func (b *MQTT) Subscribe(ctx context.Context, filter string, handler Handler) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.subscriptions[filter] = handler
	b.mu.Unlock()

	if err := b.wait(ctx, b.client.Subscribe(filter, b.qos, b.deliver(handler))); err != nil {
		return fmt.Errorf("bus: subscribing to %s: %w", filter, err)
	}
	b.logger.Debug("subscribed", "filter", filter)
	return nil
}

func (b *MQTT) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.client.Disconnect(disconnectQuiesce)
	b.logger.Info("disconnected from broker")
	return nil
}

func (b *MQTT) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
