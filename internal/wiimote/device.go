package wiimote

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/hsanzg/wiinote/internal/logger"
	"golang.org/x/sys/unix"
)

// Bound on a single poll(2) wait so a concurrent Close is noticed
// promptly even when the kernel keeps the descriptor pollable.
const maxPollSlice = 250 * time.Millisecond

// Device is an open session with one Wii Remote. It owns the core
// evdev node exclusively (grabbed) until closed. All methods are safe
// for concurrent use, but the intended discipline is a single event
// loop calling NextEvent with Close allowed from anywhere.
type Device struct {
	addr Address

	mu       sync.Mutex
	dev      *evdev.InputDevice
	fd       int
	closed   bool
	rumbleID int16
	rumbling bool
}

// Connect opens a session with the remote at addr. The node is
// grabbed so no other reader consumes its events. settle delays the
// open; a node opened immediately after hot-plug is rejected by the
// kernel with ENOTCONN.
func Connect(addr Address, settle time.Duration) (*Device, error) {
	if settle > 0 {
		time.Sleep(settle)
	}

	dev, err := evdev.Open(addr.Event)
	if err != nil {
		return nil, wrapOpenErr(addr.Event, err)
	}
	if err := dev.Grab(); err != nil {
		dev.File.Close()
		return nil, fmt.Errorf("grab %s (is another client using the remote?): %w", addr.Event, err)
	}
	fd := int(dev.File.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		dev.Release()
		dev.File.Close()
		return nil, fmt.Errorf("set %s non-blocking: %w", addr.Event, err)
	}

	return &Device{
		addr:     addr,
		dev:      dev,
		fd:       fd,
		rumbleID: -1,
	}, nil
}

// Address returns the address this session was opened with.
func (d *Device) Address() Address {
	return d.addr
}

// Name returns the HID device name of the remote.
func (d *Device) Name() string {
	return d.addr.Name
}

// NextEvent blocks until the remote reports a button transition and
// returns it. It fails with ErrTimeout when the window elapses,
// ErrDisconnected when the remote goes away and ErrClosed when the
// session is closed concurrently. Non-button input events are skipped.
func (d *Device) NextEvent(timeout time.Duration) (Event, error) {
	deadline := time.Now().Add(timeout)
	for {
		d.mu.Lock()
		closed, fd, dev := d.closed, d.fd, d.dev
		d.mu.Unlock()
		if closed {
			return Event{}, ErrClosed
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Event{}, ErrTimeout
		}
		wait := remaining
		if wait > maxPollSlice {
			wait = maxPollSlice
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(wait.Milliseconds())+1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if d.isClosed() {
				return Event{}, ErrClosed
			}
			return Event{}, fmt.Errorf("poll %s: %w", d.addr.Event, err)
		}
		if n == 0 {
			continue // slice expired, re-check deadline and closed flag
		}
		if fds[0].Revents&unix.POLLNVAL != 0 {
			if d.isClosed() {
				return Event{}, ErrClosed
			}
			return Event{}, ErrDisconnected
		}
		if fds[0].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			return Event{}, ErrDisconnected
		}

		raw, err := dev.ReadOne()
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			if d.isClosed() || errors.Is(err, fs.ErrClosed) {
				return Event{}, ErrClosed
			}
			if errors.Is(err, unix.ENODEV) {
				return Event{}, ErrDisconnected
			}
			return Event{}, fmt.Errorf("read %s: %w", d.addr.Event, err)
		}

		if raw.Type != evdev.EV_KEY {
			continue
		}
		button, ok := buttonFromCode(raw.Code)
		if !ok {
			logger.Debugf("Ignoring unknown key code %d from %s", raw.Code, d.addr.Event)
			continue
		}
		if raw.Value < 0 || raw.Value > int32(AutoRepeat) {
			logger.Debugf("Ignoring unknown key state %d from %s", raw.Value, d.addr.Event)
			continue
		}
		return Event{
			Button: button,
			State:  State(raw.Value),
			Time:   time.Unix(int64(raw.Time.Sec), int64(raw.Time.Usec)*1000),
		}, nil
	}
}

// Battery reads the battery level as a percentage from 0 to 100.
func (d *Device) Battery() (uint8, error) {
	if d.isClosed() {
		return 0, ErrClosed
	}
	return batteryLevel(d.addr.HIDPath)
}

// SetLED switches player LED n (1..4) on or off.
func (d *Device) SetLED(n int, on bool) error {
	if d.isClosed() {
		return ErrClosed
	}
	return setLED(d.addr.HIDPath, n, on)
}

// LED reads the state of player LED n (1..4).
func (d *Device) LED(n int) (bool, error) {
	if d.isClosed() {
		return false, ErrClosed
	}
	return ledState(d.addr.HIDPath, n)
}

// Close releases the session. It is idempotent and causes any pending
// NextEvent to fail with ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if d.rumbleID >= 0 {
		// Best effort; the kernel drops the effect with the fd
		// anyway, but removing it stops the motor right away.
		if d.rumbling {
			_ = d.writeRumble(false)
		}
		d.removeRumble()
	}
	d.dev.Release()
	if err := d.dev.File.Close(); err != nil {
		return fmt.Errorf("close %s: %w", d.addr.Event, err)
	}
	return nil
}

func (d *Device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
