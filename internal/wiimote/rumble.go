package wiimote

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// The rumble motor is driven through the evdev force-feedback
// interface: upload one FF_RUMBLE effect with EVIOCSFF, then toggle it
// by writing EV_FF events for its id.

const (
	// _IOW('E', 0x80, struct ff_effect) and _IOW('E', 0x81, int).
	eviocsff  = 0x40304580
	eviocrmff = 0x40044581

	// Longest single playback; Rumble(false) stops it earlier.
	rumbleReplayMs = 0xffff
)

type ffTrigger struct {
	Button   uint16
	Interval uint16
}

type ffReplay struct {
	Length uint16
	Delay  uint16
}

// ffEffect mirrors struct ff_effect from <linux/input.h> on 64-bit
// targets: 14 bytes of header, 2 bytes of padding, then a 32-byte
// union. FF_RUMBLE uses the first four union bytes as the strong and
// weak magnitudes.
type ffEffect struct {
	Type      uint16
	ID        int16
	Direction uint16
	Trigger   ffTrigger
	Replay    ffReplay
	_         [2]byte
	Payload   [32]byte
}

// Rumble toggles the rumble motor. The effect is uploaded lazily on
// the first activation and kept for the lifetime of the session.
func (d *Device) Rumble(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	if on && d.rumbleID < 0 {
		effect := ffEffect{
			Type:   evdev.FF_RUMBLE,
			ID:     -1, // kernel assigns one
			Replay: ffReplay{Length: rumbleReplayMs},
		}
		binary.LittleEndian.PutUint16(effect.Payload[0:2], 0xffff) // strong magnitude
		binary.LittleEndian.PutUint16(effect.Payload[2:4], 0xffff) // weak magnitude

		if err := ioctlPtr(d.fd, eviocsff, unsafe.Pointer(&effect)); err != nil {
			return fmt.Errorf("upload rumble effect: %w", err)
		}
		d.rumbleID = effect.ID
	}
	if d.rumbleID < 0 {
		return nil // switching off with nothing uploaded
	}
	if on == d.rumbling {
		return nil
	}

	if err := d.writeRumble(on); err != nil {
		return err
	}
	d.rumbling = on
	return nil
}

// removeRumble deletes the uploaded effect, which also stops the
// motor if it is still running. Callers hold d.mu.
func (d *Device) removeRumble() {
	// EVIOCRMFF takes the effect id by value, not by pointer.
	unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), eviocrmff, uintptr(d.rumbleID))
	d.rumbleID = -1
	d.rumbling = false
}

// writeRumble plays or stops the uploaded effect. Callers hold d.mu.
func (d *Device) writeRumble(on bool) error {
	var value uint32
	if on {
		value = 1
	}

	// struct input_event with a zeroed timestamp; the kernel fills
	// it in on delivery.
	var buf [24]byte
	binary.LittleEndian.PutUint16(buf[16:18], evdev.EV_FF)
	binary.LittleEndian.PutUint16(buf[18:20], uint16(d.rumbleID))
	binary.LittleEndian.PutUint32(buf[20:24], value)

	if _, err := unix.Write(d.fd, buf[:]); err != nil {
		return fmt.Errorf("toggle rumble: %w", err)
	}
	return nil
}

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
