// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package consola publishes where the telescope is pointing.
//
// A [Console] keeps one target, set by the last command it received:
// the zenith topic (any payload) points it straight up, and the mueve
// topic, payload {"ar": "10h21m00s", "dec": "+41d16m09s"}, points it
// at an equatorial coordinate. Once per publish interval the console
// converts the target to altitude and azimuth for the current instant
// and publishes them, retained, as hours-formatted strings:
//
//	{"altitude": "4:12:33.10", "azimuth": "15:02:11.84"}
//
// Nothing is published until the first command arrives.
package consola
