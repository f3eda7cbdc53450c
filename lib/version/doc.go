// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the tel84 binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/tel84/instruments/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// They default to "unknown" / "0.1.0-dev" in development builds and
// test runs. [Info] is what every binary prints for --version; [Full]
// adds the Go version and platform for bug reports.
package version
