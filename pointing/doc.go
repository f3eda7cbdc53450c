// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package pointing converts equatorial coordinates to the horizontal
// frame of an observing site.
//
// Catalog positions are J2000. [Site.ToHorizontal] precesses them to
// the equinox of date, corrects for nutation and annual aberration,
// and rotates the result by Greenwich apparent sidereal time, all
// through github.com/soniakeys/meeus. Atmospheric refraction and
// parallax are not applied.
//
// Angles are float64 degrees throughout. [FormatHours] renders an
// angle as hours, minutes and seconds, the way the telescope console
// has always displayed altitude and azimuth.
package pointing
