// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package pointing

import (
	"fmt"
	"math"
)

// FormatHours renders an angle in degrees as H:MM:SS.ss in hours, with
// a leading minus for negative angles. 90 degrees is "6:00:00.00".
func FormatHours(angle float64) string {
	sign := ""
	if angle < 0 {
		sign = "-"
	}
	centiseconds := int64(math.Round(math.Abs(angle) / 15 * 3600 * 100))
	if centiseconds == 0 {
		sign = ""
	}
	hours := centiseconds / 360000
	minutes := centiseconds / 6000 % 60
	seconds := centiseconds % 6000
	return fmt.Sprintf("%s%d:%02d:%02d.%02d", sign, hours, minutes, seconds/100, seconds%100)
}
