// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the pieces every tel84 binary shares: the common
// flag set (--config, --verbose, --version), logger construction, and
// configuration loading.
package cli
