package keyboard

import (
	"fmt"
	"sort"

	"github.com/ThomasT75/uinput"
)

// keyCodes resolves configuration key names to uinput key codes.
// The set covers what presentation tools bind: navigation, volume,
// and the common slide-show controls (F5 starts, b/period blank).
var keyCodes = map[string]int{
	"up":         uinput.KeyUp,
	"down":       uinput.KeyDown,
	"left":       uinput.KeyLeft,
	"right":      uinput.KeyRight,
	"enter":      uinput.KeyEnter,
	"space":      uinput.KeySpace,
	"esc":        uinput.KeyEsc,
	"tab":        uinput.KeyTab,
	"backspace":  uinput.KeyBackspace,
	"home":       uinput.KeyHome,
	"end":        uinput.KeyEnd,
	"pageup":     uinput.KeyPageup,
	"pagedown":   uinput.KeyPagedown,
	"volumeup":   uinput.KeyVolumeup,
	"volumedown": uinput.KeyVolumedown,
	"mute":       uinput.KeyMute,
	"f5":         uinput.KeyF5,
	"b":          uinput.KeyB,
	"period":     uinput.KeyDot,
}

// KeyCode resolves a key name from the mapping config.
func KeyCode(name string) (int, error) {
	code, ok := keyCodes[name]
	if !ok {
		return 0, fmt.Errorf("unknown key name %q (known: %v)", name, KnownKeys())
	}
	return code, nil
}

// KnownKeys lists the supported key names in sorted order.
func KnownKeys() []string {
	names := make([]string, 0, len(keyCodes))
	for name := range keyCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
