// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Tel84-consola simulates the telescope console. It accepts zenith and
// mueve commands over MQTT and publishes the commanded target's
// altitude and azimuth, as seen from the configured site, several
// times a second.
package main
