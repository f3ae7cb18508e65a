package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	Quit       key.Binding
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	Approve    key.Binding
	Decline    key.Binding
	Back       key.Binding
	NewLaunch  key.Binding
	ToggleLogs key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "launch token"),
		),
		Approve: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "approve"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "reject"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to form"),
		),
		NewLaunch: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "clear form"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "toggle logs"),
		),
	}
}

// ContextualHelp returns help text for the current phase
func (k KeyMap) ContextualHelp(phase Phase) []key.Binding {
	switch phase {
	case PhaseEditing:
		return []key.Binding{k.Next, k.Prev, k.Submit, k.NewLaunch, k.ToggleLogs, k.Quit}
	case PhaseApproval:
		return []key.Binding{k.Approve, k.Decline, k.Quit}
	case PhaseLaunching:
		return []key.Binding{k.ToggleLogs, k.Quit}
	case PhaseDone:
		return []key.Binding{k.Back, k.NewLaunch, k.ToggleLogs, k.Quit}
	default:
		return []key.Binding{k.Quit}
	}
}
