package wiimote

import (
	"fmt"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
)

// Button identifies a physical control on the Wii Remote core channel.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonPlus
	ButtonMinus
	ButtonHome
	ButtonOne
	ButtonTwo
)

var buttonNames = map[Button]string{
	ButtonLeft:  "left",
	ButtonRight: "right",
	ButtonUp:    "up",
	ButtonDown:  "down",
	ButtonA:     "a",
	ButtonB:     "b",
	ButtonPlus:  "plus",
	ButtonMinus: "minus",
	ButtonHome:  "home",
	ButtonOne:   "one",
	ButtonTwo:   "two",
}

func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// ParseButton resolves a configuration button name.
func ParseButton(name string) (Button, error) {
	for b, n := range buttonNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button name %q", name)
}

// buttonCodes maps the key codes reported by the hid-wiimote kernel
// driver to buttons. The driver reports the d-pad as arrow keys,
// +/- as KEY_NEXT/KEY_PREVIOUS and Home as BTN_MODE.
var buttonCodes = map[uint16]Button{
	evdev.KEY_LEFT:     ButtonLeft,
	evdev.KEY_RIGHT:    ButtonRight,
	evdev.KEY_UP:       ButtonUp,
	evdev.KEY_DOWN:     ButtonDown,
	evdev.BTN_A:        ButtonA,
	evdev.BTN_B:        ButtonB,
	evdev.KEY_NEXT:     ButtonPlus,
	evdev.KEY_PREVIOUS: ButtonMinus,
	evdev.BTN_MODE:     ButtonHome,
	evdev.BTN_1:        ButtonOne,
	evdev.BTN_2:        ButtonTwo,
}

func buttonFromCode(code uint16) (Button, bool) {
	b, ok := buttonCodes[code]
	return b, ok
}

// State is the transition reported for a button.
type State int

const (
	Released State = iota
	Pressed
	// AutoRepeat is reported while a button stays held down. The key
	// remains pressed; no new transition happened.
	AutoRepeat
)

func (s State) String() string {
	switch s {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	case AutoRepeat:
		return "autorepeat"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is a single button transition received from a remote.
type Event struct {
	Button Button
	State  State
	Time   time.Time
}
