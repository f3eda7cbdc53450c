// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Tel84-ccd-server simulates the telescope's CCD camera behind its
// line-oriented TCP protocol (INIT, EXPONE, PROGRESO, STATUS, TEMP).
// One simulated device is shared by every connection; an exposure
// advances on its own clock and survives client disconnects.
package main
