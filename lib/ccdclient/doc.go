// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package ccdclient is the client side of the CCD instrument's line
// protocol.
//
// A [Client] keeps one TCP connection to the instrument server and
// serializes requests on it: each call writes one command line and
// reads one response line. After any I/O failure the connection is
// dropped and the next call dials again. A failed request is never
// retried, because EXPONE is not idempotent.
//
// The typed helpers ([Client.Init], [Client.Expose], [Client.Progress],
// [Client.Status], [Client.Temperature]) decode responses with the
// protocol package, so the instrument's two failure lines surface as
// protocol.ErrAlreadyExposing and protocol.ErrInvalidID.
package ccdclient
