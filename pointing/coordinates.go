// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package pointing

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/apparent"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// catalogEpoch is the Julian year of the coordinates Equatorial holds.
const catalogEpoch = 2000.0

// Site is an observing location. Longitude is east-positive.
type Site struct {
	Latitude  float64
	Longitude float64

	// Height in meters. Carried for display; the model does not use it.
	Height float64
}

// SanPedroMartir is the observatory site in the Sierra de San Pedro
// Mártir, Baja California.
func SanPedroMartir() Site {
	return Site{Latitude: 31.0456, Longitude: -115.4545, Height: 2800}
}

// Equatorial is an ICRS (J2000) position in degrees.
type Equatorial struct {
	RightAscension float64
	Declination    float64
}

// Horizontal is a local position in degrees. Azimuth runs from north
// through east.
type Horizontal struct {
	Altitude float64
	Azimuth  float64
}

// Zenith is the point straight overhead.
func Zenith() Horizontal {
	return Horizontal{Altitude: 90, Azimuth: 0}
}

// JulianDate returns the Julian date of instant.
func JulianDate(instant time.Time) float64 {
	return julian.TimeToJD(instant)
}

// GreenwichMeanSiderealTime returns GMST in degrees within [0, 360).
func GreenwichMeanSiderealTime(instant time.Time) float64 {
	return normalizeDegrees(degrees(sidereal.Mean(JulianDate(instant)).Rad()))
}

// LocalSiderealTime returns the mean sidereal time at longitude in
// degrees within [0, 360).
func LocalSiderealTime(instant time.Time, longitude float64) float64 {
	return normalizeDegrees(GreenwichMeanSiderealTime(instant) + longitude)
}

// ApparentPlace returns coordinate as seen at instant: precessed from
// J2000 to the equinox of date, then corrected for nutation and annual
// aberration.
func ApparentPlace(coordinate Equatorial, instant time.Time) Equatorial {
	return apparentPlace(coordinate, JulianDate(instant))
}

// apparentPlace treats jd as dynamical time. The difference from UT is
// about a minute, far below the published resolution.
func apparentPlace(coordinate Equatorial, jd float64) Equatorial {
	mean := &coord.Equatorial{
		RA:  unit.RAFromDeg(coordinate.RightAscension),
		Dec: unit.AngleFromDeg(coordinate.Declination),
	}
	var ofDate coord.Equatorial
	precess.NewPrecessor(catalogEpoch, base.JDEToJulianYear(jd)).Precess(mean, &ofDate)

	nutationRA, nutationDec := apparent.Nutation(ofDate.RA, ofDate.Dec, jd)
	aberrationRA, aberrationDec := apparent.Aberration(ofDate.RA, ofDate.Dec, jd)

	return Equatorial{
		RightAscension: normalizeDegrees(degrees(ofDate.RA.Rad() + nutationRA.Rad() + aberrationRA.Rad())),
		Declination:    degrees(ofDate.Dec.Rad() + nutationDec.Rad() + aberrationDec.Rad()),
	}
}

// ToHorizontal returns where coordinate appears from site at instant.
// Atmospheric refraction is not applied.
func (site Site) ToHorizontal(coordinate Equatorial, instant time.Time) Horizontal {
	jd := JulianDate(instant)
	return site.horizontal(apparentPlace(coordinate, jd), sidereal.Apparent(jd))
}

// horizontal rotates an apparent place into the local frame for the
// given Greenwich apparent sidereal time.
func (site Site) horizontal(place Equatorial, greenwich unit.Time) Horizontal {
	// coord.EqToHz takes longitude positive west and measures azimuth
	// westward from south.
	azimuth, altitude := coord.EqToHz(
		unit.RAFromDeg(place.RightAscension),
		unit.AngleFromDeg(place.Declination),
		unit.AngleFromDeg(site.Latitude),
		unit.AngleFromDeg(-site.Longitude),
		greenwich,
	)
	return Horizontal{
		Altitude: degrees(altitude.Rad()),
		Azimuth:  normalizeDegrees(degrees(azimuth.Rad()) + 180),
	}
}

func normalizeDegrees(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle >= 360 {
		return 0
	}
	return angle
}

func degrees(angle float64) float64 { return angle * 180 / math.Pi }
