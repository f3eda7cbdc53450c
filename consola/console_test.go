// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package consola

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tel84/instruments/lib/bus"
	"github.com/tel84/instruments/lib/clock"
	"github.com/tel84/instruments/lib/testutil"
	"github.com/tel84/instruments/pointing"
)

var epoch = time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC)

const testInterval = 700 * time.Millisecond

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	console *Console
	bus     *bus.Memory
	clock   *clock.FakeClock
	done    chan error
}

// startConsole runs a Console on an in-memory bus and returns once its
// publish ticker exists, which is after both subscriptions are made.
func startConsole(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	memory := bus.NewMemory()
	fake := clock.Fake(epoch)
	console := &Console{
		Bus:             memory,
		Clock:           fake,
		PublishInterval: testInterval,
		Logger:          discardLogger(),
	}
	done := make(chan error, 1)
	go func() { done <- console.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "Run did not return after cancel")
		memory.Close()
	})

	fake.WaitForTimers(1)
	return &harness{console: console, bus: memory, clock: fake, done: done}
}

func (h *harness) publish(t *testing.T, topic, payload string) {
	t.Helper()
	if err := h.bus.Publish(context.Background(), topic, []byte(payload), false); err != nil {
		t.Fatalf("Publish(%s): %v", topic, err)
	}
}

// tick advances the clock by at least one publish interval and returns
// the position published for it. Once it returns the ticker channel is
// drained, so the next tick is not dropped.
func (h *harness) tick(t *testing.T, elapsed time.Duration) positionReport {
	t.Helper()
	before := len(h.bus.PublishedTo(DefaultTopics().Position))
	h.clock.Advance(elapsed)
	testutil.Eventually(t, 5*time.Second, func() bool {
		return len(h.bus.PublishedTo(DefaultTopics().Position)) > before
	}, "no position published after a tick")

	messages := h.bus.PublishedTo(DefaultTopics().Position)
	last := messages[len(messages)-1]
	if !last.Retained {
		t.Errorf("expected position to be retained")
	}
	var report positionReport
	if err := json.Unmarshal(last.Payload, &report); err != nil {
		t.Fatalf("decoding position %s: %v", last.Payload, err)
	}
	return report
}

func expectedReport(site pointing.Site, coordinate pointing.Equatorial, instant time.Time) positionReport {
	position := site.ToHorizontal(coordinate, instant)
	return positionReport{
		Altitude: pointing.FormatHours(position.Altitude),
		Azimuth:  pointing.FormatHours(position.Azimuth),
	}
}

func TestConsoleZenith(t *testing.T) {
	h := startConsole(t)

	h.publish(t, DefaultTopics().Zenith, "")
	report := h.tick(t, testInterval)

	if report.Altitude != "6:00:00.00" || report.Azimuth != "0:00:00.00" {
		t.Errorf("expected zenith 6:00:00.00/0:00:00.00, got %+v", report)
	}
}

func TestConsoleMove(t *testing.T) {
	h := startConsole(t)

	h.publish(t, DefaultTopics().Move, `{"ar": "10h21m00s", "dec": "+41d16m09s"}`)
	report := h.tick(t, testInterval)

	coordinate, err := pointing.ParseEquatorial("10h21m00s", "+41d16m09s")
	if err != nil {
		t.Fatalf("ParseEquatorial: %v", err)
	}
	want := expectedReport(pointing.SanPedroMartir(), coordinate, h.clock.Now())
	if report != want {
		t.Errorf("expected %+v, got %+v", want, report)
	}
}

func TestConsoleMoveAcceptsDegrees(t *testing.T) {
	h := startConsole(t)

	h.publish(t, DefaultTopics().Move, `{"ar": 155.25, "dec": -12.5}`)
	report := h.tick(t, testInterval)

	want := expectedReport(pointing.SanPedroMartir(),
		pointing.Equatorial{RightAscension: 155.25, Declination: -12.5}, h.clock.Now())
	if report != want {
		t.Errorf("expected %+v, got %+v", want, report)
	}
}

func TestConsoleFollowsSiderealMotion(t *testing.T) {
	h := startConsole(t)

	h.publish(t, DefaultTopics().Move, `{"ar": "5:35:17.3", "dec": "-5:23:28"}`)
	first := h.tick(t, testInterval)
	second := h.tick(t, 30*time.Minute)

	if first == second {
		t.Errorf("expected the position to change over 30 minutes, got %+v twice", first)
	}
}

func TestConsoleLatestCommandWins(t *testing.T) {
	h := startConsole(t)

	h.publish(t, DefaultTopics().Zenith, "go")
	h.publish(t, DefaultTopics().Move, `{"ar": "10:21:00", "dec": "41:16:09"}`)
	report := h.tick(t, testInterval)
	if report.Altitude == "6:00:00.00" && report.Azimuth == "0:00:00.00" {
		t.Fatalf("expected the mueve target, got zenith")
	}

	h.publish(t, DefaultTopics().Zenith, "")
	report = h.tick(t, testInterval)
	if report.Altitude != "6:00:00.00" || report.Azimuth != "0:00:00.00" {
		t.Errorf("expected zenith after the second command, got %+v", report)
	}
}

func TestConsoleDropsMalformedMove(t *testing.T) {
	h := startConsole(t)
	h.publish(t, DefaultTopics().Zenith, "")

	for _, payload := range []string{
		`not json`,
		`{"ar": "10:21:00"}`,
		`{"ar": "25h", "dec": "0"}`,
		`{"ar": "10:21:00", "dec": "91"}`,
		`{"ar": true, "dec": "0"}`,
	} {
		h.publish(t, DefaultTopics().Move, payload)
	}

	report := h.tick(t, testInterval)
	if report.Altitude != "6:00:00.00" || report.Azimuth != "0:00:00.00" {
		t.Errorf("expected malformed commands to leave the zenith target, got %+v", report)
	}
}

func TestConsolePositionWithoutTarget(t *testing.T) {
	memory := bus.NewMemory()
	defer memory.Close()
	console := &Console{Bus: memory, Topics: DefaultTopics(), Clock: clock.Fake(epoch), Logger: discardLogger()}

	if _, ok := console.Position(epoch); ok {
		t.Fatal("expected no position before any command")
	}
	console.publishPosition(context.Background())
	if published := memory.Published(); len(published) != 0 {
		t.Errorf("expected nothing published without a target, got %d messages", len(published))
	}
}

func TestConsoleCustomSite(t *testing.T) {
	site := pointing.Site{Latitude: -30.1691, Longitude: -70.8063, Height: 2207}
	console := &Console{Site: site, Logger: discardLogger()}
	coordinate := pointing.Equatorial{RightAscension: 83.8221, Declination: -5.3911}
	console.setTarget(&target{coordinate: coordinate})

	got, ok := console.Position(epoch)
	if !ok {
		t.Fatal("expected a position")
	}
	if want := site.ToHorizontal(coordinate, epoch); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestConsoleRequiresBus(t *testing.T) {
	console := &Console{Logger: discardLogger()}
	if err := console.Run(context.Background()); err == nil {
		t.Fatal("expected error without a Bus")
	}
}
