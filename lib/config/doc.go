// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the tel84
// instrument binaries.
//
// Configuration is loaded from a single file specified by either the
// --config flag (via [Resolve]) or the TEL84_CONFIG environment
// variable (via [Load]). With neither, [Default] is used unchanged: it
// carries the loopback addresses and topic names the observatory
// control software expects, so a bare invocation of any binary
// interoperates with the others.
//
// YAML is the primary format. A file ending in .json or .jsonc is read
// as JSON with comments and trailing commas. Keys not known to
// [Config] are rejected so that a misspelled key never silently falls
// back to a default.
//
// ${VAR} and ${VAR:-default} are expanded in address, broker and
// credential fields after loading. Nothing else reads the environment.
//
// Key exports:
//
//   - [Config] -- sections Server, CCDClient, MQTT, Topics, Bridge,
//     Consola, Monitor
//   - [Default] -- the built-in configuration
//   - [Load], [LoadFile] and [Resolve] -- the entry points for loading
//   - [Config.Validate] -- reports every problem joined into one error
//
// This package depends on no other tel84 packages.
package config
