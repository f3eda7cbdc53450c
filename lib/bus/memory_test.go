// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"errors"
	"testing"
)

// collect subscribes to filter and appends every delivery to the
// returned slice pointer.
func collect(t *testing.T, bus *Memory, filter string) *[]Message {
	t.Helper()
	var received []Message
	err := bus.Subscribe(context.Background(), filter, func(_ context.Context, message Message) {
		received = append(received, message)
	})
	if err != nil {
		t.Fatalf("Subscribe(%q): %v", filter, err)
	}
	return &received
}

func TestMemoryDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewMemory()
	defer bus.Close()
	ctx := context.Background()

	exact := collect(t, bus, "ccd/progreso")
	wildcard := collect(t, bus, "ccd/#")
	other := collect(t, bus, "consola/posicion")

	bus.Publish(ctx, "ccd/progreso", []byte("42"), false)
	bus.Publish(ctx, "ccd/status", []byte("LISTO"), false)

	if len(*exact) != 1 || string((*exact)[0].Payload) != "42" {
		t.Errorf("exact subscriber got %+v", *exact)
	}
	if len(*wildcard) != 2 {
		t.Errorf("wildcard subscriber got %d messages, want 2", len(*wildcard))
	}
	if len(*other) != 0 {
		t.Errorf("unrelated subscriber got %+v", *other)
	}
}

func TestMemoryRetainedReplay(t *testing.T) {
	bus := NewMemory()
	defer bus.Close()
	ctx := context.Background()

	bus.Publish(ctx, "consola/posicion", []byte(`{"altitude":"1"}`), true)
	bus.Publish(ctx, "consola/posicion", []byte(`{"altitude":"2"}`), true)
	bus.Publish(ctx, "ccd/progreso", []byte("7"), false)

	late := collect(t, bus, "#")
	if len(*late) != 1 {
		t.Fatalf("late subscriber got %d replayed messages, want 1", len(*late))
	}
	replayed := (*late)[0]
	if replayed.Topic != "consola/posicion" || string(replayed.Payload) != `{"altitude":"2"}` || !replayed.Retained {
		t.Fatalf("replayed = %+v, want the latest retained position", replayed)
	}

	// Live delivery to an existing subscriber is not flagged retained.
	bus.Publish(ctx, "consola/posicion", []byte(`{"altitude":"3"}`), true)
	if live := (*late)[1]; live.Retained {
		t.Fatalf("live delivery flagged retained: %+v", live)
	}

	bus.Publish(ctx, "consola/posicion", nil, true)
	if _, ok := bus.Retained("consola/posicion"); ok {
		t.Fatal("empty retained payload did not clear the retained message")
	}
}

func TestMemoryPublishedLog(t *testing.T) {
	bus := NewMemory()
	defer bus.Close()
	ctx := context.Background()

	payload := []byte("1")
	bus.Publish(ctx, "a", payload, false)
	payload[0] = '9'
	bus.Publish(ctx, "b", []byte("2"), false)
	bus.Publish(ctx, "a", []byte("3"), false)

	if got := len(bus.Published()); got != 3 {
		t.Fatalf("Published() has %d messages, want 3", got)
	}
	toA := bus.PublishedTo("a")
	if len(toA) != 2 || string(toA[0].Payload) != "1" || string(toA[1].Payload) != "3" {
		t.Fatalf("PublishedTo(a) = %+v, want payloads 1 then 3", toA)
	}
}

func TestMemoryHandlerMayPublish(t *testing.T) {
	bus := NewMemory()
	defer bus.Close()
	ctx := context.Background()

	err := bus.Subscribe(ctx, "request", func(ctx context.Context, message Message) {
		bus.Publish(ctx, "reply", message.Payload, false)
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	replies := collect(t, bus, "reply")

	bus.Publish(ctx, "request", []byte("ping"), false)
	if len(*replies) != 1 || string((*replies)[0].Payload) != "ping" {
		t.Fatalf("replies = %+v", *replies)
	}
}

func TestMemoryClose(t *testing.T) {
	bus := NewMemory()
	ctx := context.Background()

	var handlerContext context.Context
	bus.Subscribe(ctx, "t", func(ctx context.Context, _ Message) { handlerContext = ctx })
	bus.Publish(ctx, "t", []byte("x"), false)

	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if handlerContext.Err() == nil {
		t.Fatal("handler context not cancelled by Close")
	}
	if err := bus.Publish(ctx, "t", nil, false); !errors.Is(err, ErrClosed) {
		t.Fatalf("Publish after Close = %v, want ErrClosed", err)
	}
	if err := bus.Subscribe(ctx, "t", func(context.Context, Message) {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Subscribe after Close = %v, want ErrClosed", err)
	}
}
