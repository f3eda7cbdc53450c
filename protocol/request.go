// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Keyword identifies an instrument command.
type Keyword string

const (
	KeywordInit     Keyword = "INIT"
	KeywordExpose   Keyword = "EXPONE"
	KeywordProgress Keyword = "PROGRESO"
	KeywordStatus   Keyword = "STATUS"
	KeywordTemp     Keyword = "TEMP"
)

// Keywords lists every command the server understands, in the order
// they are documented.
var Keywords = []Keyword{KeywordInit, KeywordExpose, KeywordProgress, KeywordStatus, KeywordTemp}

// arity is the exact number of arguments each keyword takes.
var arity = map[Keyword]int{
	KeywordInit:     2,
	KeywordExpose:   1,
	KeywordProgress: 1,
	KeywordStatus:   0,
	KeywordTemp:     0,
}

// ErrInvalidCommand is returned by Parse for an unknown keyword, a
// wrong argument count, or an argument of the wrong type. The returned
// error wraps it with the detail.
var ErrInvalidCommand = errors.New("invalid command")

// Request is a parsed, validated command line. Only the fields relevant
// to Keyword are set.
type Request struct {
	Keyword Keyword

	// BinX and BinY are the INIT binning factors, both positive.
	BinX int
	BinY int

	// Seconds is the EXPONE requested duration. Any integer is accepted;
	// the simulator never reads it.
	Seconds int

	// ExposureID is the PROGRESO token as received (after the line
	// normalization). Callers canonicalize it before comparing.
	ExposureID string
}

// Normalize applies the server's line normalization: surrounding
// whitespace removed and the whole line upper-cased.
func Normalize(line string) string {
	return strings.ToUpper(strings.TrimSpace(line))
}

// Parse normalizes line and parses it into a Request. Any failure
// wraps ErrInvalidCommand.
func Parse(line string) (Request, error) {
	fields := strings.Fields(Normalize(line))
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("%w: empty line", ErrInvalidCommand)
	}

	keyword := Keyword(fields[0])
	arguments := fields[1:]
	expected, known := arity[keyword]
	if !known {
		return Request{}, fmt.Errorf("%w: unknown keyword %q", ErrInvalidCommand, fields[0])
	}
	if len(arguments) != expected {
		return Request{}, fmt.Errorf("%w: %s takes %d arguments, got %d",
			ErrInvalidCommand, keyword, expected, len(arguments))
	}

	request := Request{Keyword: keyword}
	var err error
	switch keyword {
	case KeywordInit:
		if request.BinX, err = parseBinning("x", arguments[0]); err != nil {
			return Request{}, err
		}
		if request.BinY, err = parseBinning("y", arguments[1]); err != nil {
			return Request{}, err
		}
	case KeywordExpose:
		request.Seconds, err = strconv.Atoi(arguments[0])
		if err != nil {
			return Request{}, fmt.Errorf("%w: exposure time %q is not an integer",
				ErrInvalidCommand, arguments[0])
		}
	case KeywordProgress:
		request.ExposureID = arguments[0]
	}
	return request, nil
}

func parseBinning(axis, value string) (int, error) {
	factor, err := strconv.Atoi(value)
	if err != nil || factor <= 0 {
		return 0, fmt.Errorf("%w: binning %s %q is not a positive integer", ErrInvalidCommand, axis, value)
	}
	return factor, nil
}

// String renders the request as the line a client sends (without the
// terminator).
func (request Request) String() string {
	switch request.Keyword {
	case KeywordInit:
		return fmt.Sprintf("%s %d %d", request.Keyword, request.BinX, request.BinY)
	case KeywordExpose:
		return fmt.Sprintf("%s %d", request.Keyword, request.Seconds)
	case KeywordProgress:
		return fmt.Sprintf("%s %s", request.Keyword, request.ExposureID)
	default:
		return string(request.Keyword)
	}
}
