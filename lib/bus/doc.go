// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package bus is the publish/subscribe surface the instrument bridges
// talk to.
//
// [Bus] has two implementations:
//
//   - [MQTT], returned by [Dial], connects to an MQTT broker through
//     the Eclipse Paho client. It reconnects automatically and
//     re-establishes every subscription after each reconnect.
//   - [Memory] routes messages in-process. It keeps retained messages
//     and a log of everything published, and is what the bridge and
//     console tests run against.
//
// Handlers may block: each delivery runs on its own goroutine in the
// MQTT implementation, and synchronously on the publisher's goroutine
// in Memory.
package bus
