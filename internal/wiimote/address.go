package wiimote

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultSysfsDir = "/sys/bus/hid/devices"
	defaultDevDir   = "/dev/input"

	// Input node the hid-wiimote driver registers for the core
	// buttons. The accelerometer and IR camera get separate nodes
	// with suffixed names.
	coreInputName = "Nintendo Wii Remote"

	nintendoVendorID = 0x057e
)

// Product IDs bound by the hid-wiimote driver: the original remote
// and the RVL-CNT-01-TR revision (also used by the balance board and
// the Pro controller, which share the core HID identity).
var wiimoteProductIDs = map[uint16]bool{
	0x0306: true,
	0x0330: true,
}

// Address identifies one Wii Remote by its sysfs HID device directory
// and carries the resolved core evdev node.
type Address struct {
	// HIDPath is the sysfs device directory, typically of the form
	// /sys/bus/hid/devices/0005:057E:0306.0001.
	HIDPath string

	// Event is the device node for the core buttons, e.g.
	// /dev/input/event17.
	Event string

	// Name is the HID device name reported by the remote.
	Name string
}

// ID returns the short HID bus identifier of the device.
func (a Address) ID() string {
	return filepath.Base(a.HIDPath)
}

// Battery reads the battery level without opening a session,
// as a percentage from 0 to 100.
func (a Address) Battery() (uint8, error) {
	return batteryLevel(a.HIDPath)
}

// Resolve builds an Address from a sysfs HID device directory given
// by the user, locating the core evdev node beneath it. A bare device
// identifier such as 0005:057E:0306.0001 is looked up under the
// standard sysfs bus directory.
func Resolve(hidDir string) (Address, error) {
	if !strings.ContainsRune(hidDir, os.PathSeparator) {
		hidDir = filepath.Join(defaultSysfsDir, hidDir)
	}
	return resolve(hidDir, defaultDevDir)
}

func resolve(hidDir, devDir string) (Address, error) {
	if _, err := os.Stat(hidDir); err != nil {
		return Address{}, wrapOpenErr(hidDir, err)
	}

	name := filepath.Base(hidDir)
	if _, _, hidName, err := parseUevent(hidDir); err == nil && hidName != "" {
		name = hidName
	}

	inputs, err := filepath.Glob(filepath.Join(hidDir, "input", "input*"))
	if err != nil {
		return Address{}, fmt.Errorf("scan %s: %w", hidDir, err)
	}
	for _, inputDir := range inputs {
		nodeName, err := readSysfsAttr(filepath.Join(inputDir, "name"))
		if err != nil || nodeName != coreInputName {
			continue
		}
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), "event") {
				return Address{
					HIDPath: hidDir,
					Event:   filepath.Join(devDir, entry.Name()),
					Name:    name,
				}, nil
			}
		}
	}
	return Address{}, fmt.Errorf("%w: no core input node under %s", ErrNotFound, hidDir)
}

// parseUevent extracts the vendor and product IDs and device name
// from the uevent attribute of a HID device directory. The HID_ID
// line has the form bus:vendor:product with 8-digit hex fields.
func parseUevent(hidDir string) (vendor, product uint16, name string, err error) {
	f, err := os.Open(filepath.Join(hidDir, "uevent"))
	if err != nil {
		return 0, 0, "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "HID_NAME":
			name = value
		case "HID_ID":
			parts := strings.Split(value, ":")
			if len(parts) != 3 {
				return 0, 0, "", fmt.Errorf("malformed HID_ID %q in %s", value, hidDir)
			}
			v, verr := strconv.ParseUint(parts[1], 16, 32)
			p, perr := strconv.ParseUint(parts[2], 16, 32)
			if verr != nil || perr != nil {
				return 0, 0, "", fmt.Errorf("malformed HID_ID %q in %s", value, hidDir)
			}
			vendor = uint16(v)
			product = uint16(p)
		}
	}
	return vendor, product, name, scanner.Err()
}

func isWiimote(vendor, product uint16) bool {
	return vendor == nintendoVendorID && wiimoteProductIDs[product]
}
