// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Package ccdbridge connects the CCD instrument's line protocol to the
// observatory's MQTT topics.
//
// A [Bridge] subscribes to two command topics:
//
//   - inicializa, payload {"binX": x, "binY": y}, becomes INIT x y
//   - expone, payload {"tiempo": t}, becomes EXPONE t
//
// A successful EXPONE starts a tracker that polls PROGRESO once per
// poll interval and publishes each value to the progreso topic until
// it reaches 100. Independently, a telemetry loop publishes the sensor
// temperature as {"valor": "<celsius>", "tz": <unix seconds>} and the
// STATUS literal, once at start and then once per telemetry interval.
//
// Malformed payloads and instrument errors are logged and dropped; the
// bridge itself only stops when its context is cancelled.
package ccdbridge
