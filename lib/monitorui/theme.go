// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tel84/instruments/protocol"
)

// Theme defines the monitor's color palette. All colors use lipgloss
// ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Instrument status colors.
	StatusIdle     lipgloss.Color
	StatusExposing lipgloss.Color
	StatusReady    lipgloss.Color
	StatusUnknown  lipgloss.Color

	// Temperature outside the cooled range.
	Warning lipgloss.Color
	Error   lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Progress bar gradient endpoints, as hex colors.
	ProgressStart string
	ProgressEnd   string
}

// StatusColor returns the color for a STATUS literal, and
// StatusUnknown for anything else, including no answer yet.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	switch status {
	case protocol.StatusIdle:
		return theme.StatusIdle
	case protocol.StatusExposing:
		return theme.StatusExposing
	case protocol.StatusReady:
		return theme.StatusReady
	default:
		return theme.StatusUnknown
	}
}

// DefaultTheme is the built-in scheme for 256-color terminals with a
// dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	StatusIdle:     lipgloss.Color("114"), // green
	StatusExposing: lipgloss.Color("220"), // amber
	StatusReady:    lipgloss.Color("75"),  // blue
	StatusUnknown:  lipgloss.Color("240"),

	Warning: lipgloss.Color("208"),
	Error:   lipgloss.Color("196"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	ProgressStart: "#5A56E0",
	ProgressEnd:   "#EE6FF8",
}
