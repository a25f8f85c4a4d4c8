package clicker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hsanzg/wiinote/internal/config"
	"github.com/hsanzg/wiinote/internal/wiimote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSession replays a fixed event sequence and then fails with
// endErr, standing in for a real remote.
type scriptedSession struct {
	events    []wiimote.Event
	endErr    error
	next      int
	battery   uint8
	leds      [4]bool
	ledWrites int
	rumbles   []bool
	closes    int

	// onExhausted runs when the script runs out, before endErr is
	// returned.
	onExhausted func()
}

func (s *scriptedSession) NextEvent(timeout time.Duration) (wiimote.Event, error) {
	if s.next >= len(s.events) {
		if s.onExhausted != nil {
			s.onExhausted()
		}
		return wiimote.Event{}, s.endErr
	}
	ev := s.events[s.next]
	s.next++
	return ev, nil
}

func (s *scriptedSession) Battery() (uint8, error)  { return s.battery, nil }
func (s *scriptedSession) Rumble(on bool) error     { s.rumbles = append(s.rumbles, on); return nil }
func (s *scriptedSession) Name() string             { return "Nintendo RVL-CNT-01" }
func (s *scriptedSession) Close() error             { s.closes++; return nil }
func (s *scriptedSession) LED(n int) (bool, error) { return s.leds[n-1], nil }
func (s *scriptedSession) SetLED(n int, on bool) error {
	s.ledWrites++
	s.leds[n-1] = on
	return nil
}

type recordedKey struct {
	code  int
	press bool
}

// recordingEmitter captures emitted actions; failAt makes the nth
// emit fail.
type recordingEmitter struct {
	emitted []recordedKey
	failAt  int
	calls   int
}

func (r *recordingEmitter) Emit(code int, press bool) error {
	r.calls++
	if r.failAt != 0 && r.calls == r.failAt {
		return errors.New("uinput write failed")
	}
	r.emitted = append(r.emitted, recordedKey{code, press})
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig
	cfg.Device.RumbleOnConnect = false
	cfg.Display.BatteryInterval = time.Hour // keep the gauge out of the way
	return &cfg
}

func testEngine(t *testing.T, cfg *config.Config, emitter Emitter) *Engine {
	t.Helper()
	mapping, err := NewMapping(map[string]string{"a": "pagedown", "b": "pageup"})
	require.NoError(t, err)
	return New(cfg, mapping, emitter)
}

func TestHandleEmitsActionsInOrder(t *testing.T) {
	emitter := &recordingEmitter{}
	engine := testEngine(t, testConfig(), emitter)

	session := &scriptedSession{
		events: []wiimote.Event{
			{Button: wiimote.ButtonA, State: wiimote.Pressed},
			{Button: wiimote.ButtonA, State: wiimote.Released},
			{Button: wiimote.ButtonHome, State: wiimote.Pressed}, // unmapped here
			{Button: wiimote.ButtonB, State: wiimote.Pressed},
		},
		endErr: wiimote.ErrDisconnected,
	}

	err := engine.handle(context.Background(), session)
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)
	assert.Equal(t, 1, session.closes)

	// A press/release pair emits exactly two actions in order; the
	// unmapped Home press emits nothing.
	require.Len(t, emitter.emitted, 3)
	assert.True(t, emitter.emitted[0].press)
	assert.False(t, emitter.emitted[1].press)
	assert.Equal(t, emitter.emitted[0].code, emitter.emitted[1].code)
	assert.True(t, emitter.emitted[2].press)
	assert.NotEqual(t, emitter.emitted[0].code, emitter.emitted[2].code)
}

func TestHandleAutoRepeatEmitsNothing(t *testing.T) {
	emitter := &recordingEmitter{}
	engine := testEngine(t, testConfig(), emitter)

	session := &scriptedSession{
		events: []wiimote.Event{
			{Button: wiimote.ButtonA, State: wiimote.Pressed},
			{Button: wiimote.ButtonA, State: wiimote.AutoRepeat},
			{Button: wiimote.ButtonA, State: wiimote.AutoRepeat},
			{Button: wiimote.ButtonA, State: wiimote.Released},
		},
		endErr: wiimote.ErrDisconnected,
	}

	err := engine.handle(context.Background(), session)
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)
	require.Len(t, emitter.emitted, 2)
	assert.True(t, emitter.emitted[0].press)
	assert.False(t, emitter.emitted[1].press)
}

func TestHandleContinuesAfterEmitError(t *testing.T) {
	emitter := &recordingEmitter{failAt: 1}
	engine := testEngine(t, testConfig(), emitter)

	session := &scriptedSession{
		events: []wiimote.Event{
			{Button: wiimote.ButtonA, State: wiimote.Pressed},
			{Button: wiimote.ButtonB, State: wiimote.Pressed},
		},
		endErr: wiimote.ErrDisconnected,
	}

	err := engine.handle(context.Background(), session)
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)

	// The dropped first keystroke must not end the session.
	require.Len(t, emitter.emitted, 1)
	assert.Equal(t, 2, emitter.calls)
}

func TestHandleStopsOnContextCancel(t *testing.T) {
	emitter := &recordingEmitter{}
	engine := testEngine(t, testConfig(), emitter)

	ctx, cancel := context.WithCancel(context.Background())
	session := &scriptedSession{
		events: []wiimote.Event{
			{Button: wiimote.ButtonA, State: wiimote.Pressed},
		},
		endErr: wiimote.ErrTimeout,
	}
	// Cancel once the script is exhausted; the loop then sees only
	// timeouts and must notice the cancellation instead of spinning.
	session.onExhausted = cancel

	err := engine.handle(ctx, session)
	assert.NoError(t, err)
	assert.Equal(t, 1, session.closes)
	// Only the event delivered before cancellation was handled.
	assert.Len(t, emitter.emitted, 1)
}

func TestHandleUpdatesLightsOnButtonOne(t *testing.T) {
	emitter := &recordingEmitter{}
	engine := testEngine(t, testConfig(), emitter)

	session := &scriptedSession{
		events: []wiimote.Event{
			{Button: wiimote.ButtonOne, State: wiimote.Pressed},
		},
		endErr:  wiimote.ErrDisconnected,
		battery: 85,
	}

	err := engine.handle(context.Background(), session)
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)

	// 85% lights three of the four LEDs. The refresh on button one
	// changes nothing and must not rewrite them.
	assert.Equal(t, [4]bool{true, true, true, false}, session.leds)
	assert.Equal(t, 3, session.ledWrites)
	assert.Empty(t, emitter.emitted)
}

func TestHandleLocatePulseOnButtonTwo(t *testing.T) {
	emitter := &recordingEmitter{}
	engine := testEngine(t, testConfig(), emitter)

	session := &scriptedSession{
		events: []wiimote.Event{
			{Button: wiimote.ButtonTwo, State: wiimote.Pressed},
			{Button: wiimote.ButtonTwo, State: wiimote.Released},
		},
		endErr: wiimote.ErrDisconnected,
	}

	err := engine.handle(context.Background(), session)
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)

	// One pulse: motor on then off, on the press only.
	assert.Equal(t, []bool{true, false}, session.rumbles)
	assert.Empty(t, emitter.emitted)
}

func TestHandleRumbleOnConnect(t *testing.T) {
	cfg := testConfig()
	cfg.Device.RumbleOnConnect = true
	emitter := &recordingEmitter{}
	engine := testEngine(t, cfg, emitter)

	session := &scriptedSession{endErr: wiimote.ErrDisconnected}

	err := engine.handle(context.Background(), session)
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)
	assert.Equal(t, []bool{true, false}, session.rumbles)
}

// makeRemote fabricates the sysfs entry the hid-wiimote driver
// produces for one remote, for driving the monitor in Run tests.
func makeRemote(t *testing.T, sysfsDir string) {
	t.Helper()
	hidDir := filepath.Join(sysfsDir, "0005:057E:0306.0001")
	coreDir := filepath.Join(hidDir, "input", "input0")
	require.NoError(t, os.MkdirAll(filepath.Join(coreDir, "event5"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(coreDir, "name"),
		[]byte("Nintendo Wii Remote\n"), 0644))
	uevent := "HID_ID=0005:0000057E:00000306\nHID_NAME=Nintendo RVL-CNT-01\n"
	require.NoError(t, os.WriteFile(filepath.Join(hidDir, "uevent"), []byte(uevent), 0644))
}

func fixtureMonitor(sysfsDir string, discover bool) func() *wiimote.Monitor {
	return func() *wiimote.Monitor {
		m := wiimote.NewMonitor(discover, time.Millisecond)
		m.SysfsDir = sysfsDir
		return m
	}
}

func TestRunNoDeviceWithoutDiscoverFails(t *testing.T) {
	engine := testEngine(t, testConfig(), &recordingEmitter{})
	engine.newMonitor = fixtureMonitor(t.TempDir(), false)
	connects := 0
	engine.connect = func(addr wiimote.Address) (Session, error) {
		connects++
		return &scriptedSession{endErr: wiimote.ErrDisconnected}, nil
	}

	err := engine.Run(context.Background())
	assert.ErrorIs(t, err, wiimote.ErrNotFound)
	assert.Zero(t, connects)
}

func TestRunDiscoverWaitsInsteadOfFailing(t *testing.T) {
	cfg := testConfig()
	cfg.Device.Discover = true
	engine := testEngine(t, cfg, &recordingEmitter{})
	engine.newMonitor = fixtureMonitor(t.TempDir(), true)
	connects := 0
	engine.connect = func(addr wiimote.Address) (Session, error) {
		connects++
		return &scriptedSession{endErr: wiimote.ErrDisconnected}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	// With no device connected, discovery keeps polling until
	// cancelled; it must not give up with a not-found error.
	err := engine.Run(ctx)
	assert.NoError(t, err)
	assert.Zero(t, connects)
}

func TestRunRediscoversAfterDisconnect(t *testing.T) {
	cfg := testConfig()
	cfg.Device.Discover = true
	engine := testEngine(t, cfg, &recordingEmitter{})

	sysfsDir := t.TempDir()
	makeRemote(t, sysfsDir)
	engine.newMonitor = fixtureMonitor(sysfsDir, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connects := 0
	engine.connect = func(addr wiimote.Address) (Session, error) {
		connects++
		if connects == 2 {
			// Second session: stop the engine once reconnected.
			cancel()
			return &scriptedSession{endErr: wiimote.ErrTimeout}, nil
		}
		return &scriptedSession{endErr: wiimote.ErrDisconnected}, nil
	}

	err := engine.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, connects)
}

func TestRunDisconnectWithoutDiscoverFails(t *testing.T) {
	engine := testEngine(t, testConfig(), &recordingEmitter{})

	sysfsDir := t.TempDir()
	makeRemote(t, sysfsDir)
	engine.newMonitor = fixtureMonitor(sysfsDir, false)
	engine.connect = func(addr wiimote.Address) (Session, error) {
		return &scriptedSession{endErr: wiimote.ErrDisconnected}, nil
	}

	err := engine.Run(context.Background())
	assert.ErrorIs(t, err, wiimote.ErrDisconnected)
}

func TestLedsForLevel(t *testing.T) {
	tests := []struct {
		level uint8
		want  int
	}{
		{0, 1},
		{29, 1},
		{30, 2},
		{59, 2},
		{60, 3},
		{89, 3},
		{90, 4},
		{100, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ledsForLevel(tt.level), "level %d", tt.level)
	}
}
