// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the line-oriented text protocol spoken by the
// CCD instrument server.
//
// Every request is one newline-terminated line: a keyword followed by
// whitespace-separated arguments. The server normalizes the line (trim,
// upper-case) before parsing, so keywords and exposure tokens are
// case-insensitive on the wire. Every request gets exactly one response
// line.
//
//	INIT x y      -> LISTO
//	EXPONE t      -> ID: <token> | Error: El CCD se encuentra exponiendo
//	PROGRESO id   -> <0-100>     | Error: Identificador Invalido
//	STATUS        -> IDLE | LISTO | EXPONIENDO
//	TEMP          -> <float with two decimals>
//	anything else -> Comando Invalido
//
// [Parse] turns a raw line into a fully typed [Request], validating
// arity and argument types up front so that dispatch never sees a
// malformed argument. The Format functions build server responses; the
// Decode functions are their client-side inverses and map the failure
// lines back to [ErrAlreadyExposing] and [ErrInvalidID].
//
// The response strings are the contract with the MQTT bridge and with
// dashboards built on top of it. They are Spanish and must not change.
package protocol
