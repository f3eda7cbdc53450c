// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package pointing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate wraps every parse failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ParseRightAscension parses a right ascension and returns degrees in
// [0, 360). Accepted forms:
//
//	10h21m00s  10h21m  10.35h   hours with unit letters
//	10:21:00   10 21 00         sexagesimal hours
//	155.25d    155.25deg        degrees with unit
//	155.25                      decimal degrees
func ParseRightAscension(text string) (float64, error) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	var (
		value float64
		err   error
	)
	switch {
	case strings.ContainsRune(lower, 'h'):
		value, err = parseUnitLetters(lower, "h")
		value *= 15
	case hasDegreeUnit(lower):
		value, err = parseUnitLetters(lower, "d")
	case strings.ContainsAny(lower, ": "):
		value, err = parseSexagesimal(lower)
		value *= 15
	default:
		value, err = strconv.ParseFloat(lower, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: right ascension %q: %v", ErrInvalidCoordinate, text, err)
	}
	if math.IsNaN(value) || value < 0 || value >= 360 {
		return 0, fmt.Errorf("%w: right ascension %q is outside 0h to 24h", ErrInvalidCoordinate, text)
	}
	return value, nil
}

// ParseDeclination parses a declination and returns degrees in
// [-90, 90]. Accepted forms:
//
//	+41d16m09s  -5d30m   degrees with unit letters
//	+41:16:09   -5 30    sexagesimal degrees
//	41.269               decimal degrees
func ParseDeclination(text string) (float64, error) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	var (
		value float64
		err   error
	)
	switch {
	case hasDegreeUnit(lower):
		value, err = parseUnitLetters(lower, "d")
	case strings.ContainsAny(lower, ": "):
		value, err = parseSexagesimal(lower)
	default:
		value, err = strconv.ParseFloat(lower, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: declination %q: %v", ErrInvalidCoordinate, text, err)
	}
	if math.IsNaN(value) || value < -90 || value > 90 {
		return 0, fmt.Errorf("%w: declination %q is outside -90 to +90 degrees", ErrInvalidCoordinate, text)
	}
	return value, nil
}

// ParseEquatorial parses a right ascension and declination pair.
func ParseEquatorial(rightAscension, declination string) (Equatorial, error) {
	ra, err := ParseRightAscension(rightAscension)
	if err != nil {
		return Equatorial{}, err
	}
	dec, err := ParseDeclination(declination)
	if err != nil {
		return Equatorial{}, err
	}
	return Equatorial{RightAscension: ra, Declination: dec}, nil
}

func hasDegreeUnit(text string) bool {
	return strings.ContainsRune(text, 'd') || strings.ContainsRune(text, '°')
}

// parseUnitLetters parses forms like "10h21m00s" or "+41d16m09s",
// where lead is the letter of the largest unit.
func parseUnitLetters(text, lead string) (float64, error) {
	text = strings.TrimSuffix(text, "eg")
	text = strings.NewReplacer("deg", " ", "°", " ", lead, " ", "m", " ", "'", " ", "s", " ", "\"", " ").Replace(text)
	return parseSexagesimal(text)
}

// parseSexagesimal parses one to three fields separated by colons or
// whitespace. A sign on the first field applies to the whole value.
func parseSexagesimal(text string) (float64, error) {
	text = strings.TrimSpace(text)
	negative := false
	switch {
	case strings.HasPrefix(text, "-"):
		negative = true
		text = text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}

	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ':' || r == ' ' || r == '\t' })
	if len(fields) == 0 || len(fields) > 3 {
		return 0, fmt.Errorf("expected 1 to 3 fields, got %d", len(fields))
	}

	value := 0.0
	scale := 1.0
	for index, field := range fields {
		if strings.HasPrefix(field, "-") || strings.HasPrefix(field, "+") {
			return 0, fmt.Errorf("sign inside field %q", field)
		}
		part, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not a number", field)
		}
		if index > 0 && part >= 60 {
			return 0, fmt.Errorf("field %q must be below 60", field)
		}
		if index < len(fields)-1 && part != float64(int64(part)) {
			return 0, fmt.Errorf("only the last field may have a fraction")
		}
		value += part / scale
		scale *= 60
	}

	if negative {
		value = -value
	}
	return value, nil
}
