// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package ccdserver serves the CCD instrument protocol over TCP.
//
// [Server] listens on a TCP address and runs one goroutine per accepted
// connection. Every connection shares the same [Instrument] (in
// production a *device.Device), so an exposure started on one
// connection is visible, and protected, on all others, and survives
// the connection that started it.
//
// Each connection loops: read a line, hand it to the [Dispatcher],
// write the single response line, flush. End of stream closes the
// connection without a response. I/O errors close only that
// connection.
//
// [Dispatcher] owns the command table. Lines are parsed and validated
// by package protocol before any Instrument method runs; malformed
// input, unknown keywords, and even a panic inside a handler all turn
// into "Comando Invalido" rather than escaping the connection.
//
// Start binds the listener and returns; Stop closes the listener and
// every live connection and waits for the handlers to exit. Addr
// reports the bound address, which matters when listening on port 0.
package ccdserver
