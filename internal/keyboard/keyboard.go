// Package keyboard delivers key actions to the host through a uinput
// virtual keyboard device.
package keyboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"
)

// ErrEmit is returned when the virtual device rejects a key event.
// A dropped keystroke is user-visible, so callers decide whether to
// log and continue or abort; it is never swallowed here.
var ErrEmit = errors.New("failed to emit key event")

// ErrClosed is returned when emitting on a closed keyboard.
var ErrClosed = errors.New("virtual keyboard closed")

// Keyboard is a virtual uinput keyboard.
type Keyboard struct {
	mu     sync.Mutex
	kb     uinput.Keyboard
	closed bool
}

// New creates the virtual keyboard device. path is the uinput device
// node, normally /dev/uinput.
func New(path, name string) (*Keyboard, error) {
	kb, err := uinput.CreateKeyboard(path, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard at %s (is the uinput module loaded and writable?): %w", path, err)
	}
	return &Keyboard{kb: kb}, nil
}

// Emit presses or releases one key.
func (k *Keyboard) Emit(code int, press bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}

	var err error
	if press {
		err = k.kb.KeyDown(code)
	} else {
		err = k.kb.KeyUp(code)
	}
	if err != nil {
		return fmt.Errorf("%w: key %d: %v", ErrEmit, code, err)
	}
	return nil
}

// Close destroys the virtual device. Idempotent.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	return k.kb.Close()
}
