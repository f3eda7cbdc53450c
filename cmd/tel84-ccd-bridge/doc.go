// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Tel84-ccd-bridge connects the CCD instrument server to the
// observatory's MQTT broker. It turns inicializa and expone commands
// into INIT and EXPONE requests, publishes exposure progress, and
// publishes the sensor temperature and status on a fixed interval.
package main
