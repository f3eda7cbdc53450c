// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdserver

import (
	"io"
	"log/slog"
	"testing"

	"github.com/tel84/instruments/device"
	"github.com/tel84/instruments/protocol"
)

// scriptedInstrument records calls and returns canned results.
type scriptedInstrument struct {
	binning     device.Binning
	initCalls   int
	startErr    error
	progressErr error
	progress    int
	status      device.Status
	exposureID  string
	seconds     []int
	progressIDs []string
	panicOnTemp bool
}

func (s *scriptedInstrument) Init(binning device.Binning) {
	s.initCalls++
	s.binning = binning
}

func (s *scriptedInstrument) StartExposure(seconds int) (string, error) {
	s.seconds = append(s.seconds, seconds)
	if s.startErr != nil {
		return "", s.startErr
	}
	return s.exposureID, nil
}

func (s *scriptedInstrument) Progress(id string) (int, error) {
	s.progressIDs = append(s.progressIDs, id)
	return s.progress, s.progressErr
}

func (s *scriptedInstrument) Status() device.Status { return s.status }

func (s *scriptedInstrument) Temperature() float64 {
	if s.panicOnTemp {
		panic("sensor exploded")
	}
	return -111.5
}

func newDispatcher(instrument Instrument) *Dispatcher {
	return &Dispatcher{
		Instrument: instrument,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDispatchSuccessResponses(t *testing.T) {
	instrument := &scriptedInstrument{
		status:     device.StatusExposing,
		exposureID: "abc-123",
		progress:   37,
	}
	dispatcher := newDispatcher(instrument)

	tests := []struct {
		line string
		want string
	}{
		{"INIT 2 3", "LISTO"},
		{"expone 15", "ID: abc-123"},
		{"PROGRESO ABC-123", "37"},
		{"status", "EXPONIENDO"},
		{"TEMP", "-111.50"},
	}
	for _, test := range tests {
		if got := dispatcher.Handle(test.line); got != test.want {
			t.Errorf("Handle(%q) = %q, want %q", test.line, got, test.want)
		}
	}

	if instrument.binning != (device.Binning{X: 2, Y: 3}) {
		t.Errorf("binning = %v, want 2x3", instrument.binning)
	}
	if len(instrument.seconds) != 1 || instrument.seconds[0] != 15 {
		t.Errorf("StartExposure calls = %v, want [15]", instrument.seconds)
	}
	if len(instrument.progressIDs) != 1 || instrument.progressIDs[0] != "ABC-123" {
		t.Errorf("Progress calls = %v, want [ABC-123]", instrument.progressIDs)
	}
}

func TestDispatchErrorResponses(t *testing.T) {
	instrument := &scriptedInstrument{
		startErr:    device.ErrAlreadyExposing,
		progressErr: device.ErrInvalidID,
	}
	dispatcher := newDispatcher(instrument)

	if got := dispatcher.Handle("EXPONE 5"); got != protocol.ResponseAlreadyExposing {
		t.Errorf("EXPONE = %q, want %q", got, protocol.ResponseAlreadyExposing)
	}
	if got := dispatcher.Handle("PROGRESO other"); got != protocol.ResponseInvalidID {
		t.Errorf("PROGRESO = %q, want %q", got, protocol.ResponseInvalidID)
	}
}

func TestDispatchInvalidCommandsNeverReachInstrument(t *testing.T) {
	instrument := &scriptedInstrument{}
	dispatcher := newDispatcher(instrument)

	for _, line := range []string{"", "HELLO", "INIT a b", "INIT 1", "EXPONE x", "STATUS please", "INITIALIZE 1 1"} {
		if got := dispatcher.Handle(line); got != protocol.ResponseInvalidCommand {
			t.Errorf("Handle(%q) = %q, want %q", line, got, protocol.ResponseInvalidCommand)
		}
	}
	if instrument.initCalls != 0 || len(instrument.seconds) != 0 || len(instrument.progressIDs) != 0 {
		t.Fatalf("instrument was called for invalid input: %+v", instrument)
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	dispatcher := newDispatcher(&scriptedInstrument{panicOnTemp: true, status: device.StatusIdle})

	if got := dispatcher.Handle("TEMP"); got != protocol.ResponseInvalidCommand {
		t.Fatalf("Handle(TEMP) after panic = %q, want %q", got, protocol.ResponseInvalidCommand)
	}
	if got := dispatcher.Handle("STATUS"); got != "IDLE" {
		t.Fatalf("dispatcher unusable after recovered panic: STATUS = %q", got)
	}
}

func TestCommandTableCoversEveryKeyword(t *testing.T) {
	for _, keyword := range protocol.Keywords {
		if _, ok := commandTable[keyword]; !ok {
			t.Errorf("no handler for keyword %s", keyword)
		}
	}
	if len(commandTable) != len(protocol.Keywords) {
		t.Errorf("commandTable has %d entries, want %d", len(commandTable), len(protocol.Keywords))
	}
}
