// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that everything
// in the instrument stack that waits on time can be driven
// deterministically in tests.
//
// Three components wait on time: the exposure simulator (one tick per
// progress step), the CCD bridge (progress polling and the temperature
// telemetry loop), and the pointing console (periodic position
// publishing). Each holds a Clock field instead of calling time.After,
// time.NewTicker or time.Sleep directly.
//
// In production:
//
//	device := device.New(device.Options{Clock: clock.Real()})
//
// In tests:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	device := device.New(device.Options{Clock: fake})
//	device.StartExposure(5)
//	fake.WaitForTimers(1)               // simulator registered its tick
//	fake.Advance(device.TickInterval()) // progress step fires
//
// # FakeClock Synchronization
//
// A goroutine calling After, Sleep, or NewTicker on a FakeClock
// registers a pending waiter. WaitForTimers blocks until a given
// number of waiters exist, which removes the race between a goroutine
// arming its next tick and the test advancing time.
package clock
