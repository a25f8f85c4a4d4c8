package clicker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hsanzg/wiinote/internal/config"
	"github.com/hsanzg/wiinote/internal/keyboard"
	"github.com/hsanzg/wiinote/internal/logger"
	"github.com/hsanzg/wiinote/internal/wiimote"
)

// Longest single wait inside the event loop, so context cancellation
// is noticed between waits.
const maxEventWait = 500 * time.Millisecond

// How long the locate pulse (button two) runs the rumble motor.
const locatePulse = 300 * time.Millisecond

// Session is the device surface the engine drives. *wiimote.Device
// implements it; tests substitute a scripted fake.
type Session interface {
	NextEvent(timeout time.Duration) (wiimote.Event, error)
	Battery() (uint8, error)
	SetLED(n int, on bool) error
	LED(n int) (bool, error)
	Rumble(on bool) error
	Name() string
	Close() error
}

// Emitter delivers key actions to the host. *keyboard.Keyboard
// implements it.
type Emitter interface {
	Emit(code int, press bool) error
}

// Engine owns the find-connect-handle lifecycle of the clicker.
type Engine struct {
	cfg     *config.Config
	mapping *Mapping
	emitter Emitter

	// connect and newMonitor are swappable for tests.
	connect    func(addr wiimote.Address) (Session, error)
	newMonitor func() *wiimote.Monitor
}

// New creates an engine over a validated mapping and an open emitter.
func New(cfg *config.Config, mapping *Mapping, emitter Emitter) *Engine {
	return &Engine{
		cfg:     cfg,
		mapping: mapping,
		emitter: emitter,
		connect: func(addr wiimote.Address) (Session, error) {
			return wiimote.Connect(addr, cfg.Device.SettleDelay)
		},
		newMonitor: func() *wiimote.Monitor {
			return wiimote.NewMonitor(cfg.Device.Discover, cfg.Device.PollInterval)
		},
	}
}

// Run connects to a remote and processes its events until ctx is
// cancelled. With a configured address it connects to that device
// only. Otherwise it takes the first connected remote; with discovery
// enabled it polls until one appears, and returns to discovery after
// a disconnect. Without discovery a missing device or a disconnect is
// a terminal error.
func (e *Engine) Run(ctx context.Context) error {
	// An explicit address pins the session to that device; no
	// discovery before or after.
	if addr := e.cfg.Device.Address; addr != "" {
		resolved, err := wiimote.Resolve(addr)
		if err != nil {
			return err
		}
		return e.session(ctx, resolved)
	}

	for {
		if e.cfg.Device.Discover {
			logger.Info("Discovering wii remotes")
		} else {
			logger.Info("Enumerating connected wii remotes")
		}
		monitor := e.newMonitor()
		addr, err := monitor.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if addr == nil {
			return fmt.Errorf("%w (pair a remote first, or run with --discover)", wiimote.ErrNotFound)
		}

		err = e.session(ctx, *addr)
		switch {
		case err == nil:
			return nil // ctx cancelled inside the loop
		case errors.Is(err, wiimote.ErrDisconnected) && e.cfg.Device.Discover:
			// The remote powered off or went out of range; look for
			// a new one.
			continue
		default:
			return err
		}
	}
}

// session connects to one remote and runs its event loop.
func (e *Engine) session(ctx context.Context, addr wiimote.Address) error {
	dev, err := e.connect(addr)
	if err != nil {
		return err
	}
	logger.Infof("Device connected: %s", dev.Name())

	err = e.handle(ctx, dev)
	if errors.Is(err, wiimote.ErrDisconnected) {
		logger.Infof("Device disconnected: %s", dev.Name())
	}
	return err
}

// handle is the event loop for one session. It returns nil when ctx
// is cancelled and ErrDisconnected when the remote goes away; emit
// failures and timeouts never unwind it.
func (e *Engine) handle(ctx context.Context, s Session) error {
	defer s.Close()

	if e.cfg.Device.RumbleOnConnect {
		e.pulse(s)
	}
	updateLights(s)
	nextRefresh := time.Now().Add(e.cfg.Display.BatteryInterval)

	for {
		if ctx.Err() != nil {
			return nil
		}

		wait := time.Until(nextRefresh)
		if wait <= 0 {
			updateLights(s)
			nextRefresh = time.Now().Add(e.cfg.Display.BatteryInterval)
			continue
		}
		if wait > maxEventWait {
			wait = maxEventWait
		}

		ev, err := s.NextEvent(wait)
		if err != nil {
			switch {
			case errors.Is(err, wiimote.ErrTimeout):
				continue
			case errors.Is(err, wiimote.ErrClosed):
				if ctx.Err() != nil {
					return nil
				}
				return err
			default:
				return err
			}
		}

		// A mapped button overrides any built-in action, including
		// the reserved ones on buttons one and two.
		if e.mapping.Has(ev.Button) {
			action, ok := e.mapping.Map(ev)
			if !ok {
				continue // autorepeat, the key stays held
			}
			if err := e.emitter.Emit(action.Code, action.Press); err != nil {
				// A single missed keystroke must not end the
				// session; surface it and keep going.
				logger.Errorf("Dropped key event for %s %s: %v", ev.Button, ev.State, err)
			}
			continue
		}

		// Unmapped buttons one and two keep their built-in actions.
		if ev.State != wiimote.Pressed {
			continue
		}
		switch ev.Button {
		case wiimote.ButtonOne:
			updateLights(s)
			nextRefresh = time.Now().Add(e.cfg.Display.BatteryInterval)
		case wiimote.ButtonTwo:
			e.pulse(s)
		}
	}
}

// pulse runs the rumble motor briefly, to confirm a connection or to
// locate the remote.
func (e *Engine) pulse(s Session) {
	if err := s.Rumble(true); err != nil {
		logger.Warnf("Failed to start rumble: %v", err)
		return
	}
	time.Sleep(locatePulse)
	if err := s.Rumble(false); err != nil {
		logger.Warnf("Failed to stop rumble: %v", err)
	}
}

// ensure the real implementations satisfy the interfaces
var (
	_ Session = (*wiimote.Device)(nil)
	_ Emitter = (*keyboard.Keyboard)(nil)
)
