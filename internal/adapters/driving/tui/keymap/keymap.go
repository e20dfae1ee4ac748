// Package keymap holds the chat key bindings.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = (*KeyMap)(nil)

// KeyMap lists every binding the chat reacts to.
type KeyMap struct {
	Quit    key.Binding
	Send    key.Binding
	Sources key.Binding // show or hide the sources under answers

	// NewSession drops follow-up context by switching session id.
	NewSession key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func DefaultKeyMap() *KeyMap {
	bind := func(help, desc string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}
	return &KeyMap{
		Quit:       bind("esc", "quit", "ctrl+c", "esc"),
		Send:       bind("enter", "ask", "enter"),
		Sources:    bind("ctrl+s", "sources", "ctrl+s"),
		NewSession: bind("ctrl+n", "new session", "ctrl+n"),
		ScrollUp:   bind("pgup", "scroll up", "pgup"),
		ScrollDown: bind("pgdn", "scroll down", "pgdown"),
	}
}

// ShortHelp is what the status bar shows.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Sources, k.NewSession, k.Quit}
}

func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{k.ScrollUp, k.ScrollDown},
	}
}

// Matches reports whether keyStr triggers an enabled binding.
func Matches(keyStr string, binding key.Binding) bool {
	return binding.Enabled() && slices.Contains(binding.Keys(), keyStr)
}
