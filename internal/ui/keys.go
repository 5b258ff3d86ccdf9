package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(canSave bool) string {
	s := "space pause  ←/→ seek  l layout  a amplitude  ↑/↓ height  m smoothing  w window"
	if canSave {
		s += "  s save preset"
	}
	s += "  q quit"
	return s
}
