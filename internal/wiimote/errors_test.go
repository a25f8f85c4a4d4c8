package wiimote

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapOpenErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing node", fs.ErrNotExist, ErrNotFound},
		{"no access", fs.ErrPermission, ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapOpenErr("/dev/input/event5", &fs.PathError{
				Op: "open", Path: "/dev/input/event5", Err: tt.err,
			})
			assert.ErrorIs(t, wrapped, tt.want)
			assert.Contains(t, wrapped.Error(), "/dev/input/event5")
		})
	}

	t.Run("other errors pass through wrapped", func(t *testing.T) {
		cause := errors.New("device busy")
		wrapped := wrapOpenErr("/dev/input/event5", cause)
		assert.ErrorIs(t, wrapped, cause)
		assert.NotErrorIs(t, wrapped, ErrNotFound)
	})
}
