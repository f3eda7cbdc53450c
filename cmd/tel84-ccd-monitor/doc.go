// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

// Tel84-ccd-monitor is an interactive terminal dashboard for the CCD
// instrument server. It shows status, temperature and exposure
// progress, and can send INIT and EXPONE with the configured binning
// and exposure time.
package main
