package wiimote

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonFromCode(t *testing.T) {
	tests := []struct {
		code uint16
		want Button
	}{
		{evdev.KEY_LEFT, ButtonLeft},
		{evdev.KEY_RIGHT, ButtonRight},
		{evdev.KEY_UP, ButtonUp},
		{evdev.KEY_DOWN, ButtonDown},
		{evdev.BTN_A, ButtonA},
		{evdev.BTN_B, ButtonB},
		{evdev.KEY_NEXT, ButtonPlus},
		{evdev.KEY_PREVIOUS, ButtonMinus},
		{evdev.BTN_MODE, ButtonHome},
		{evdev.BTN_1, ButtonOne},
		{evdev.BTN_2, ButtonTwo},
	}
	for _, tt := range tests {
		got, ok := buttonFromCode(tt.code)
		require.True(t, ok, "code %d", tt.code)
		assert.Equal(t, tt.want, got)
	}

	// Codes other devices report must not translate.
	_, ok := buttonFromCode(evdev.KEY_SPACE)
	assert.False(t, ok)
}

func TestParseButtonRoundTrip(t *testing.T) {
	for b, name := range buttonNames {
		parsed, err := ParseButton(name)
		require.NoError(t, err)
		assert.Equal(t, b, parsed)
		assert.Equal(t, name, parsed.String())
	}

	_, err := ParseButton("z")
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "released", Released.String())
	assert.Equal(t, "pressed", Pressed.String())
	assert.Equal(t, "autorepeat", AutoRepeat.String())
}
