// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// initializeCommand is the inicializa payload. The x/y spellings are
// accepted for older dashboards.
type initializeCommand struct {
	BinX json.RawMessage `json:"binX"`
	BinY json.RawMessage `json:"binY"`
	X    json.RawMessage `json:"x"`
	Y    json.RawMessage `json:"y"`
}

// exposeCommand is the expone payload.
type exposeCommand struct {
	Tiempo json.RawMessage `json:"tiempo"`
}

// temperatureReport is the payload published on the temperature topic.
// Valor stays a string because dashboards display it verbatim.
type temperatureReport struct {
	Valor string `json:"valor"`
	TZ    int64  `json:"tz"`
}

var errMissingField = errors.New("missing field")

// parseInitialize returns the binning requested by an inicializa
// payload.
func parseInitialize(payload []byte) (binX, binY int, err error) {
	var command initializeCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		return 0, 0, fmt.Errorf("decoding inicializa payload: %w", err)
	}
	rawX, rawY := command.BinX, command.BinY
	if len(rawX) == 0 {
		rawX = command.X
	}
	if len(rawY) == 0 {
		rawY = command.Y
	}
	if binX, err = decodeInteger("binX", rawX); err != nil {
		return 0, 0, err
	}
	if binY, err = decodeInteger("binY", rawY); err != nil {
		return 0, 0, err
	}
	if binX <= 0 || binY <= 0 {
		return 0, 0, fmt.Errorf("binning %dx%d must be positive", binX, binY)
	}
	return binX, binY, nil
}

// parseExpose returns the exposure time requested by an expone
// payload.
func parseExpose(payload []byte) (int, error) {
	var command exposeCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		return 0, fmt.Errorf("decoding expone payload: %w", err)
	}
	seconds, err := decodeInteger("tiempo", command.Tiempo)
	if err != nil {
		return 0, err
	}
	return seconds, nil
}

// decodeInteger accepts a JSON number with no fractional part or a
// string holding a decimal integer.
func decodeInteger(field string, raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%s: %w", field, errMissingField)
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if number != math.Trunc(number) || math.Abs(number) > math.MaxInt32 {
			return 0, fmt.Errorf("%s: %v is not an integer", field, number)
		}
		return int(number), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("%s: expected a number, got %s", field, raw)
	}
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", field, text)
	}
	return value, nil
}
