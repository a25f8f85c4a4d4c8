package wiimote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hsanzg/wiinote/internal/logger"
)

// Monitor enumerates connected Wii Remotes and, in discovery mode,
// keeps polling the HID bus for hot-plugged ones. The kernel exposes a
// remote the moment the Bluetooth stack pairs it, so watching sysfs is
// enough; no udev socket is needed.
type Monitor struct {
	// SysfsDir and DevDir exist so tests can point the monitor at a
	// fabricated tree.
	SysfsDir string
	DevDir   string

	discover bool
	interval time.Duration

	enumerated bool
	pending    []Address
	seen       map[string]bool
}

// NewMonitor creates a monitor. With discover false the monitor only
// yields the remotes connected right now; with discover true it then
// polls at the given interval until cancelled.
func NewMonitor(discover bool, interval time.Duration) *Monitor {
	return &Monitor{
		SysfsDir: defaultSysfsDir,
		DevDir:   defaultDevDir,
		discover: discover,
		interval: interval,
		seen:     make(map[string]bool),
	}
}

// Next yields the address of the next remote. It returns (nil, nil)
// once all connected remotes have been yielded and discovery is off.
// In discovery mode it blocks until a new remote appears or ctx is
// cancelled. A remote that disconnects and reconnects is yielded
// again.
func (m *Monitor) Next(ctx context.Context) (*Address, error) {
	if !m.enumerated {
		if err := m.scan(); err != nil {
			return nil, err
		}
		m.enumerated = true
	}

	for {
		if len(m.pending) > 0 {
			addr := m.pending[0]
			m.pending = m.pending[1:]
			return &addr, nil
		}
		if !m.discover {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.interval):
		}
		if err := m.scan(); err != nil {
			return nil, err
		}
	}
}

// Enumerate returns the addresses of all currently connected remotes.
func (m *Monitor) Enumerate() ([]Address, error) {
	if err := m.scan(); err != nil {
		return nil, err
	}
	m.enumerated = true
	addrs := m.pending
	m.pending = nil
	return addrs, nil
}

// scan walks the HID bus and queues newly appeared remotes. Devices
// that vanished are forgotten so a later re-plug yields them again.
func (m *Monitor) scan() error {
	entries, err := os.ReadDir(m.SysfsDir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", m.SysfsDir, err)
	}

	current := make(map[string]bool)
	for _, entry := range entries {
		hidDir := filepath.Join(m.SysfsDir, entry.Name())
		vendor, product, _, err := parseUevent(hidDir)
		if err != nil || !isWiimote(vendor, product) {
			continue
		}
		current[entry.Name()] = true
		if m.seen[entry.Name()] {
			continue
		}

		addr, err := resolve(hidDir, m.DevDir)
		if err != nil {
			// Node may not be fully registered yet; retry on the
			// next scan.
			logger.Debugf("Skipping %s: %v", entry.Name(), err)
			continue
		}
		m.seen[entry.Name()] = true
		m.pending = append(m.pending, addr)
		logger.Debugf("Found wii remote %s at %s", addr.Name, addr.Event)
	}

	for id := range m.seen {
		if !current[id] {
			delete(m.seen, id)
		}
	}
	return nil
}
