// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitorui implements a terminal dashboard for one CCD
// instrument. Built on bubbletea, it polls the instrument once per
// refresh interval and renders its status, sensor temperature and the
// progress of the exposure it started.
//
// The [Instrument] interface decouples the UI from the transport;
// *ccdclient.Client satisfies it. Every instrument call runs inside a
// tea.Cmd, so a slow or unreachable instrument never blocks rendering.
//
// Data flow:
//
//	[instrument TCP server]
//	        | (Instrument interface)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package monitorui
