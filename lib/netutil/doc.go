// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds the small connection helpers shared by the
// instrument server and its clients: classification of errors that
// mean "the peer went away" and a bounded line scanner for the
// newline-delimited instrument protocol.
package netutil
