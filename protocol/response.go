// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Fixed response lines.
const (
	ResponseReady           = "LISTO"
	ResponseAlreadyExposing = "Error: El CCD se encuentra exponiendo"
	ResponseInvalidID       = "Error: Identificador Invalido"
	ResponseInvalidCommand  = "Comando Invalido"

	// exposureIDPrefix precedes the token in a successful EXPONE reply.
	exposureIDPrefix = "ID: "
)

// Status literals returned by STATUS.
const (
	StatusIdle     = "IDLE"
	StatusReady    = "LISTO"
	StatusExposing = "EXPONIENDO"
)

// Errors decoded from failure lines on the client side.
var (
	ErrAlreadyExposing = errors.New("ccd is already exposing")
	ErrInvalidID       = errors.New("invalid exposure id")
)

// UnexpectedResponseError is returned by the Decode functions when a
// line is neither the expected success shape nor a known failure line.
type UnexpectedResponseError struct {
	Keyword Keyword
	Line    string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("protocol: unexpected %s response %q", e.Keyword, e.Line)
}

// FormatExposureID renders the EXPONE success line.
func FormatExposureID(id string) string {
	return exposureIDPrefix + id
}

// FormatProgress renders a PROGRESO success line.
func FormatProgress(progress int) string {
	return strconv.Itoa(progress)
}

// FormatTemperature renders a TEMP line with exactly two decimals.
func FormatTemperature(celsius float64) string {
	return strconv.FormatFloat(celsius, 'f', 2, 64)
}

// failure maps a known failure line to its error, or nil.
func failure(line string) error {
	switch line {
	case ResponseAlreadyExposing:
		return ErrAlreadyExposing
	case ResponseInvalidID:
		return ErrInvalidID
	case ResponseInvalidCommand:
		return ErrInvalidCommand
	}
	return nil
}

// DecodeReady checks an INIT response.
func DecodeReady(line string) error {
	line = strings.TrimSpace(line)
	if err := failure(line); err != nil {
		return err
	}
	if line != ResponseReady {
		return &UnexpectedResponseError{Keyword: KeywordInit, Line: line}
	}
	return nil
}

// DecodeExposureID extracts the token from an EXPONE response.
func DecodeExposureID(line string) (string, error) {
	line = strings.TrimSpace(line)
	if err := failure(line); err != nil {
		return "", err
	}
	id, found := strings.CutPrefix(line, exposureIDPrefix)
	id = strings.TrimSpace(id)
	if !found || id == "" || strings.ContainsAny(id, " \t") {
		return "", &UnexpectedResponseError{Keyword: KeywordExpose, Line: line}
	}
	return id, nil
}

// DecodeProgress parses a PROGRESO response.
func DecodeProgress(line string) (int, error) {
	line = strings.TrimSpace(line)
	if err := failure(line); err != nil {
		return 0, err
	}
	progress, err := strconv.Atoi(line)
	if err != nil || progress < 0 || progress > 100 {
		return 0, &UnexpectedResponseError{Keyword: KeywordProgress, Line: line}
	}
	return progress, nil
}

// DecodeStatus validates a STATUS response and returns the literal.
func DecodeStatus(line string) (string, error) {
	line = strings.TrimSpace(line)
	switch line {
	case StatusIdle, StatusReady, StatusExposing:
		return line, nil
	}
	if err := failure(line); err != nil {
		return "", err
	}
	return "", &UnexpectedResponseError{Keyword: KeywordStatus, Line: line}
}

// DecodeTemperature parses a TEMP response.
func DecodeTemperature(line string) (float64, error) {
	line = strings.TrimSpace(line)
	if err := failure(line); err != nil {
		return 0, err
	}
	celsius, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, &UnexpectedResponseError{Keyword: KeywordTemp, Line: line}
	}
	return celsius, nil
}
