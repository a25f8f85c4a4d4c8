package clicker

import (
	"testing"

	"github.com/hsanzg/wiinote/internal/wiimote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMappingValidation(t *testing.T) {
	tests := []struct {
		name    string
		table   map[string]string
		wantErr bool
	}{
		{
			name:  "valid mapping",
			table: map[string]string{"a": "enter", "b": "left"},
		},
		{
			name:  "empty mapping",
			table: map[string]string{},
		},
		{
			name:    "unknown button",
			table:   map[string]string{"trigger": "enter"},
			wantErr: true,
		},
		{
			name:    "unknown key",
			table:   map[string]string{"a": "hyperspace"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapping(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMappingMap(t *testing.T) {
	mapping, err := NewMapping(map[string]string{
		"a": "pagedown",
		"b": "pageup",
	})
	require.NoError(t, err)

	t.Run("unmapped button yields nothing", func(t *testing.T) {
		_, ok := mapping.Map(wiimote.Event{Button: wiimote.ButtonHome, State: wiimote.Pressed})
		assert.False(t, ok)
	})

	t.Run("press and release map to matching actions", func(t *testing.T) {
		press, ok := mapping.Map(wiimote.Event{Button: wiimote.ButtonA, State: wiimote.Pressed})
		require.True(t, ok)
		assert.True(t, press.Press)

		release, ok := mapping.Map(wiimote.Event{Button: wiimote.ButtonA, State: wiimote.Released})
		require.True(t, ok)
		assert.False(t, release.Press)
		assert.Equal(t, press.Code, release.Code)
	})

	t.Run("autorepeat yields nothing", func(t *testing.T) {
		_, ok := mapping.Map(wiimote.Event{Button: wiimote.ButtonA, State: wiimote.AutoRepeat})
		assert.False(t, ok)
	})

	t.Run("repeated calls are idempotent", func(t *testing.T) {
		ev := wiimote.Event{Button: wiimote.ButtonB, State: wiimote.Pressed}
		first, ok1 := mapping.Map(ev)
		second, ok2 := mapping.Map(ev)
		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.Equal(t, first, second)
	})

	t.Run("distinct buttons map to distinct keys", func(t *testing.T) {
		a, _ := mapping.Map(wiimote.Event{Button: wiimote.ButtonA, State: wiimote.Pressed})
		b, _ := mapping.Map(wiimote.Event{Button: wiimote.ButtonB, State: wiimote.Pressed})
		assert.NotEqual(t, a.Code, b.Code)
	})

	t.Run("Has reflects the table", func(t *testing.T) {
		assert.True(t, mapping.Has(wiimote.ButtonA))
		assert.False(t, mapping.Has(wiimote.ButtonOne))
	})
}
