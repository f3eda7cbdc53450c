// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests that wait on a goroutine (an exposure finishing, a
// bridge publishing) fail with a message instead of hanging. They are
// the only place tests use real wall-clock timeouts; the code under
// test runs on lib/clock's fake clock.
//
// Helpers call t.Fatalf on failure since test setup failures are not
// recoverable.
package testutil
