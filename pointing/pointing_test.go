// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package pointing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

var observingNight = time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC)

func approximately(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}

// angularDistance is the unsigned difference between two azimuths.
func angularDistance(a, b float64) float64 {
	difference := math.Abs(normalizeDegrees(a) - normalizeDegrees(b))
	return math.Min(difference, 360-difference)
}

func TestJulianDate(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := JulianDate(j2000); !approximately(got, 2451545.0, 1e-9) {
		t.Errorf("expected JD 2451545.0 at J2000, got %f", got)
	}

	unixEpoch := time.Unix(0, 0)
	if got := JulianDate(unixEpoch); !approximately(got, 2440587.5, 1e-9) {
		t.Errorf("expected JD 2440587.5 at the unix epoch, got %f", got)
	}
}

func TestGreenwichMeanSiderealTime(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := GreenwichMeanSiderealTime(j2000); !approximately(got, 280.46061837, 1e-6) {
		t.Errorf("expected GMST 280.46061837 at J2000, got %.9f", got)
	}

	// 1987 April 10, 0h UT: 13h10m46.3668s.
	meeus := time.Date(1987, 4, 10, 0, 0, 0, 0, time.UTC)
	if got := GreenwichMeanSiderealTime(meeus); !approximately(got, 197.693195, 1e-4) {
		t.Errorf("expected GMST 197.693195, got %.6f", got)
	}
}

func TestLocalSiderealTimeWrapsLongitude(t *testing.T) {
	gmst := GreenwichMeanSiderealTime(observingNight)
	lst := LocalSiderealTime(observingNight, -115.4545)

	if lst < 0 || lst >= 360 {
		t.Fatalf("expected LST within [0, 360), got %f", lst)
	}
	if angularDistance(lst, gmst-115.4545) > 1e-9 {
		t.Errorf("expected LST = GMST + longitude, got %f for GMST %f", lst, gmst)
	}
}

func TestHorizontalGeometry(t *testing.T) {
	site := SanPedroMartir()
	// 30000 s of sidereal time is 125 degrees at Greenwich.
	greenwich := unit.Time(30000)
	lst := normalizeDegrees(125 + site.Longitude)

	tests := []struct {
		name         string
		place        Equatorial
		wantAltitude float64
		wantAzimuth  float64
		checkAzimuth bool
	}{
		{
			name:         "target at local zenith",
			place:        Equatorial{RightAscension: lst, Declination: site.Latitude},
			wantAltitude: 90,
		},
		{
			name:         "celestial pole",
			place:        Equatorial{RightAscension: 42, Declination: 90},
			wantAltitude: site.Latitude,
			wantAzimuth:  0,
			checkAzimuth: true,
		},
		{
			name:         "equator on the meridian",
			place:        Equatorial{RightAscension: lst, Declination: 0},
			wantAltitude: 90 - site.Latitude,
			wantAzimuth:  180,
			checkAzimuth: true,
		},
		{
			name:         "equator six hours west",
			place:        Equatorial{RightAscension: normalizeDegrees(lst - 90), Declination: 0},
			wantAltitude: 0,
			wantAzimuth:  270,
			checkAzimuth: true,
		},
		{
			name:         "equator six hours east",
			place:        Equatorial{RightAscension: normalizeDegrees(lst + 90), Declination: 0},
			wantAltitude: 0,
			wantAzimuth:  90,
			checkAzimuth: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := site.horizontal(test.place, greenwich)
			if !approximately(got.Altitude, test.wantAltitude, 1e-5) {
				t.Errorf("expected altitude %f, got %f", test.wantAltitude, got.Altitude)
			}
			if test.checkAzimuth && angularDistance(got.Azimuth, test.wantAzimuth) > 1e-5 {
				t.Errorf("expected azimuth %f, got %f", test.wantAzimuth, got.Azimuth)
			}
			if got.Azimuth < 0 || got.Azimuth >= 360 {
				t.Errorf("expected azimuth within [0, 360), got %f", got.Azimuth)
			}
		})
	}
}

// Venus from the US Naval Observatory, 1987 April 10 19:21 UT, with
// the apparent place and expected result from Meeus, Astronomical
// Algorithms, example 13.b (A = 68.0337 from south, h = 15.1249).
func TestHorizontalReferencePosition(t *testing.T) {
	site := Site{Latitude: 38.921389, Longitude: -77.065556}
	venus := Equatorial{RightAscension: 347.319337, Declination: -6.719892}
	instant := time.Date(1987, 4, 10, 19, 21, 0, 0, time.UTC)

	got := site.horizontal(venus, sidereal.Apparent(JulianDate(instant)))

	if !approximately(got.Altitude, 15.1249, 1e-3) {
		t.Errorf("expected altitude 15.1249, got %.4f", got.Altitude)
	}
	if angularDistance(got.Azimuth, 248.0337) > 1e-3 {
		t.Errorf("expected azimuth 248.0337, got %.4f", got.Azimuth)
	}
}

// Theta Persei on 2028 November 13.19 TD, Meeus example 23.a. The
// catalog place already carries the star's proper motion to that date.
// Expected apparent place: 2h46m14.390s, +49d21m07.45s.
func TestApparentPlaceReference(t *testing.T) {
	catalog := Equatorial{RightAscension: 41.054061, Declination: 49.227749}
	jd := julian.CalendarGregorianToJD(2028, 11, 13.19)

	got := apparentPlace(catalog, jd)

	const arcsecond = 1.0 / 3600
	if !approximately(got.RightAscension, 41.559958, 2*arcsecond) {
		t.Errorf("expected right ascension 41.559958, got %.6f", got.RightAscension)
	}
	if !approximately(got.Declination, 49.352069, 2*arcsecond) {
		t.Errorf("expected declination 49.352069, got %.6f", got.Declination)
	}
}

func TestToHorizontalAppliesPrecession(t *testing.T) {
	site := SanPedroMartir()
	catalog := Equatorial{RightAscension: 155.25, Declination: 41.27}
	instant := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	got := site.ToHorizontal(catalog, instant)
	uncorrected := site.horizontal(catalog, sidereal.Apparent(JulianDate(instant)))

	// Twenty-six years of precession move this target by about 0.3
	// degrees in altitude.
	if shift := math.Abs(got.Altitude - uncorrected.Altitude); shift < 0.2 || shift > 0.4 {
		t.Errorf("expected the apparent place to shift altitude by about 0.3 degrees, got %.4f", shift)
	}

	want := site.horizontal(ApparentPlace(catalog, instant), sidereal.Apparent(JulianDate(instant)))
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		angle float64
		want  string
	}{
		{90, "6:00:00.00"},
		{0, "0:00:00.00"},
		{15.5, "1:02:00.00"},
		{-7.5, "-0:30:00.00"},
		{123.456, "8:13:49.44"},
		{359.99999999, "24:00:00.00"},
		{-0.000000001, "0:00:00.00"},
	}
	for _, test := range tests {
		if got := FormatHours(test.angle); got != test.want {
			t.Errorf("FormatHours(%v): expected %q, got %q", test.angle, test.want, got)
		}
	}
}

func TestFormatZenith(t *testing.T) {
	zenith := Zenith()
	if got := FormatHours(zenith.Altitude); got != "6:00:00.00" {
		t.Errorf("expected zenith altitude 6:00:00.00, got %s", got)
	}
	if got := FormatHours(zenith.Azimuth); got != "0:00:00.00" {
		t.Errorf("expected zenith azimuth 0:00:00.00, got %s", got)
	}
}

func TestParseRightAscension(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"10h21m00s", 155.25},
		{"10h21m", 155.25},
		{"10.35h", 155.25},
		{"10:21:00", 155.25},
		{"10 21 00", 155.25},
		{"155.25", 155.25},
		{"155.25d", 155.25},
		{"155.25deg", 155.25},
		{" 0:00:00 ", 0},
		{"23:59:59.9", 359.999583333},
	}
	for _, test := range tests {
		got, err := ParseRightAscension(test.text)
		if err != nil {
			t.Errorf("ParseRightAscension(%q) failed: %v", test.text, err)
			continue
		}
		if !approximately(got, test.want, 1e-6) {
			t.Errorf("ParseRightAscension(%q): expected %f, got %f", test.text, test.want, got)
		}
	}
}

func TestParseRightAscension_Invalid(t *testing.T) {
	for _, text := range []string{"", "25h", "24:00:00", "abc", "10:61:00", "-1:00:00", "360", "nan", "10.5:30:00", "1:2:3:4"} {
		_, err := ParseRightAscension(text)
		if err == nil {
			t.Errorf("ParseRightAscension(%q): expected error", text)
			continue
		}
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("ParseRightAscension(%q): expected ErrInvalidCoordinate, got %v", text, err)
		}
	}
}

func TestParseDeclination(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"+41d16m09s", 41.269166667},
		{"41:16:09", 41.269166667},
		{"-0:30:00", -0.5},
		{"-5d30m", -5.5},
		{"-5 30", -5.5},
		{"31.0456", 31.0456},
		{"90", 90},
		{"-90", -90},
	}
	for _, test := range tests {
		got, err := ParseDeclination(test.text)
		if err != nil {
			t.Errorf("ParseDeclination(%q) failed: %v", test.text, err)
			continue
		}
		if !approximately(got, test.want, 1e-6) {
			t.Errorf("ParseDeclination(%q): expected %f, got %f", test.text, test.want, got)
		}
	}
}

func TestParseDeclination_Invalid(t *testing.T) {
	for _, text := range []string{"", "91", "-90.5", "north", "10:75", "+-5", "nan"} {
		if _, err := ParseDeclination(text); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("ParseDeclination(%q): expected ErrInvalidCoordinate, got %v", text, err)
		}
	}
}

func TestParseEquatorial(t *testing.T) {
	coordinate, err := ParseEquatorial("5:35:17.3", "-5:23:28")
	if err != nil {
		t.Fatalf("ParseEquatorial failed: %v", err)
	}
	if !approximately(coordinate.RightAscension, 83.822083, 1e-5) {
		t.Errorf("expected RA 83.822083, got %f", coordinate.RightAscension)
	}
	if !approximately(coordinate.Declination, -5.391111, 1e-5) {
		t.Errorf("expected Dec -5.391111, got %f", coordinate.Declination)
	}

	if _, err := ParseEquatorial("5:35:17.3", "95"); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate for declination 95, got %v", err)
	}
}
