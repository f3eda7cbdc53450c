// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package device holds the simulated CCD's shared state and its
// exposure simulator.
//
// A process has exactly one [Device]. Every connection handler calls
// into it, and at most one exposure goroutine mutates it in the
// background. All fields sit behind one mutex that is held for each
// whole logical operation, so a check-then-mutate sequence such as
// [Device.StartExposure] can never interleave with a simulator step or
// another handler.
//
// State machine:
//
//	IDLE --Init--> LISTO --StartExposure--> EXPONIENDO --100 ticks--> LISTO
//	IDLE --StartExposure--> EXPONIENDO
//
// Completion always lands in LISTO, whether or not Init was ever
// called. The exposure runs a fixed number of steps at a fixed tick
// interval; the requested duration is recorded but does not change the
// simulated length.
//
// The exposure goroutine is owned by the Device through an exposure
// record (token, done channel, cancel function). No command can abort
// an exposure; the base context given to [New] only stops simulators
// at process shutdown.
package device
