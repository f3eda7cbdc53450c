// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdserver

import (
	"errors"
	"log/slog"

	"github.com/tel84/instruments/device"
	"github.com/tel84/instruments/protocol"
)

// Instrument is the device surface the protocol drives.
type Instrument interface {
	Init(binning device.Binning)
	StartExposure(seconds int) (string, error)
	Progress(id string) (int, error)
	Status() device.Status
	Temperature() float64
}

// commandHandler runs one validated request against the instrument and
// returns the response line.
type commandHandler func(instrument Instrument, request protocol.Request) string

var commandTable = map[protocol.Keyword]commandHandler{
	protocol.KeywordInit:     handleInit,
	protocol.KeywordExpose:   handleExpose,
	protocol.KeywordProgress: handleProgress,
	protocol.KeywordStatus:   handleStatus,
	protocol.KeywordTemp:     handleTemp,
}

func handleInit(instrument Instrument, request protocol.Request) string {
	instrument.Init(device.Binning{X: request.BinX, Y: request.BinY})
	return protocol.ResponseReady
}

func handleExpose(instrument Instrument, request protocol.Request) string {
	id, err := instrument.StartExposure(request.Seconds)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.FormatExposureID(id)
}

func handleProgress(instrument Instrument, request protocol.Request) string {
	progress, err := instrument.Progress(request.ExposureID)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.FormatProgress(progress)
}

func handleStatus(instrument Instrument, _ protocol.Request) string {
	return string(instrument.Status())
}

func handleTemp(instrument Instrument, _ protocol.Request) string {
	return protocol.FormatTemperature(instrument.Temperature())
}

// errorResponse maps an instrument error to its response line.
func errorResponse(err error) string {
	switch {
	case errors.Is(err, device.ErrAlreadyExposing):
		return protocol.ResponseAlreadyExposing
	case errors.Is(err, device.ErrInvalidID):
		return protocol.ResponseInvalidID
	default:
		return protocol.ResponseInvalidCommand
	}
}

// Dispatcher turns request lines into response lines.
type Dispatcher struct {
	Instrument Instrument

	// Logger receives rejected commands at Debug and recovered panics
	// at Error. Defaults to slog.Default().
	Logger *slog.Logger
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Handle parses line, runs it, and returns the response line without a
// terminator. It never panics.
func (d *Dispatcher) Handle(line string) (response string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger().Error("command handler panicked", "line", line, "panic", recovered)
			response = protocol.ResponseInvalidCommand
		}
	}()

	request, err := protocol.Parse(line)
	if err != nil {
		d.logger().Debug("rejected command", "line", line, "error", err)
		return protocol.ResponseInvalidCommand
	}

	handler, ok := commandTable[request.Keyword]
	if !ok {
		return protocol.ResponseInvalidCommand
	}
	return handler(d.Instrument, request)
}
