// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdbridge

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseInitialize(t *testing.T) {
	tests := []struct {
		payload string
		binX    int
		binY    int
		wantErr bool
	}{
		{`{"binX": 1, "binY": 1}`, 1, 1, false},
		{`{"binX": 2, "binY": 4, "extra": true}`, 2, 4, false},
		{`{"x": 3, "y": 3}`, 3, 3, false},
		{`{"binX": 2, "y": 5}`, 2, 5, false},
		{`{"binX": " 8 ", "binY": "8"}`, 8, 8, false},
		{`{"binX": 2.0, "binY": 2}`, 2, 2, false},
		{`{"binX": 0, "binY": 1}`, 0, 0, true},
		{`{"binX": -1, "binY": 1}`, 0, 0, true},
		{`{"binY": 1}`, 0, 0, true},
		{`{"binX": true, "binY": 1}`, 0, 0, true},
		{`[]`, 0, 0, true},
		{``, 0, 0, true},
	}
	for _, test := range tests {
		binX, binY, err := parseInitialize([]byte(test.payload))
		if test.wantErr {
			if err == nil {
				t.Errorf("parseInitialize(%s) = %d, %d; want error", test.payload, binX, binY)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseInitialize(%s): %v", test.payload, err)
			continue
		}
		if binX != test.binX || binY != test.binY {
			t.Errorf("parseInitialize(%s) = %d, %d; want %d, %d", test.payload, binX, binY, test.binX, test.binY)
		}
	}
}

func TestParseExpose(t *testing.T) {
	tests := []struct {
		payload string
		want    int
		wantErr bool
	}{
		{`{"tiempo": 10}`, 10, false},
		{`{"tiempo": 0}`, 0, false},
		{`{"tiempo": "30"}`, 30, false},
		{`{"tiempo": 1e2}`, 100, false},
		{`{"tiempo": -5}`, -5, false},
		{`{"tiempo": 2.5}`, 0, true},
		{`{"tiempo": "2.5"}`, 0, true},
		{`{"tiempo": 1e12}`, 0, true},
		{`{"seconds": 10}`, 0, true},
		{`not json`, 0, true},
	}
	for _, test := range tests {
		got, err := parseExpose([]byte(test.payload))
		if test.wantErr {
			if err == nil {
				t.Errorf("parseExpose(%s) = %d; want error", test.payload, got)
			}
			continue
		}
		if err != nil || got != test.want {
			t.Errorf("parseExpose(%s) = %d, %v; want %d", test.payload, got, err, test.want)
		}
	}
}

func TestDecodeIntegerMissingField(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		_, err := decodeInteger("tiempo", json.RawMessage(raw))
		if !errors.Is(err, errMissingField) {
			t.Errorf("decodeInteger(%q) = %v, want errMissingField", raw, err)
		}
	}
}

func TestTemperatureReportShape(t *testing.T) {
	data, err := json.Marshal(temperatureReport{Valor: "-110.25", TZ: 1767225600})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"valor":"-110.25","tz":1767225600}`; got != want {
		t.Fatalf("report = %s, want %s", got, want)
	}
}
