// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the monitor's key bindings.
type KeyMap struct {
	Initialize key.Binding
	Expose     key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Initialize: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "init"),
	),
	Expose: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "expose"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Initialize, keys.Expose, keys.Refresh, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{keys.ShortHelp()}
}
