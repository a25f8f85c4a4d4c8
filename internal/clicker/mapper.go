// Package clicker turns Wii Remote button events into synthetic
// keyboard input.
package clicker

import (
	"fmt"

	"github.com/hsanzg/wiinote/internal/keyboard"
	"github.com/hsanzg/wiinote/internal/wiimote"
)

// Action is one key event to inject: a key code plus press or release.
type Action struct {
	Code  int
	Press bool
}

// Mapping is an immutable association from buttons to key codes, at
// most one key per button. Built once from the config at startup so
// bad button or key names fail before a device is touched.
type Mapping struct {
	keys map[wiimote.Button]int
}

// NewMapping validates and builds a mapping from the config table of
// button name to key name.
func NewMapping(table map[string]string) (*Mapping, error) {
	keys := make(map[wiimote.Button]int, len(table))
	for buttonName, keyName := range table {
		button, err := wiimote.ParseButton(buttonName)
		if err != nil {
			return nil, fmt.Errorf("mapping: %w", err)
		}
		code, err := keyboard.KeyCode(keyName)
		if err != nil {
			return nil, fmt.Errorf("mapping for button %q: %w", buttonName, err)
		}
		keys[button] = code
	}
	return &Mapping{keys: keys}, nil
}

// Map translates a button event into a key action. It is a pure
// function: no side effects, no failure mode. The second return is
// false for unmapped buttons and for autorepeat transitions, which
// leave the key in its current state.
func (m *Mapping) Map(ev wiimote.Event) (Action, bool) {
	code, ok := m.keys[ev.Button]
	if !ok {
		return Action{}, false
	}
	switch ev.State {
	case wiimote.Pressed:
		return Action{Code: code, Press: true}, true
	case wiimote.Released:
		return Action{Code: code, Press: false}, true
	default:
		return Action{}, false
	}
}

// Has reports whether a button is mapped.
func (m *Mapping) Has(b wiimote.Button) bool {
	_, ok := m.keys[b]
	return ok
}
