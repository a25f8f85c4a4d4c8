// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Device connection settings
	Device DeviceConfig `mapstructure:"device"`

	// Virtual keyboard settings
	Keyboard KeyboardConfig `mapstructure:"keyboard"`

	// Button to key mapping (button name -> key name)
	Mapping map[string]string `mapstructure:"mapping"`

	// LED battery display settings
	Display DisplayConfig `mapstructure:"display"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DeviceConfig contains Wii Remote connection settings
type DeviceConfig struct {
	// Address is a HID device identifier such as 0005:057E:0306.0001,
	// or a full sysfs device directory. Empty means connect to the
	// first remote found.
	Address string `mapstructure:"address"`

	// Discover keeps polling for a remote instead of exiting when
	// none is connected, and re-enters discovery after a disconnect.
	Discover bool `mapstructure:"discover"`

	// PollInterval is the discovery polling interval.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// SettleDelay is how long to wait before opening a freshly
	// hot-plugged device node. Opening immediately after discovery
	// fails with ENOTCONN on most kernels.
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	// RumbleOnConnect fires a short rumble pulse once connected.
	RumbleOnConnect bool `mapstructure:"rumble_on_connect"`
}

// KeyboardConfig contains virtual keyboard settings
type KeyboardConfig struct {
	Name       string `mapstructure:"name"`
	UinputPath string `mapstructure:"uinput_path"`
}

// DisplayConfig contains LED battery display settings
type DisplayConfig struct {
	BatteryInterval time.Duration `mapstructure:"battery_interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults. The default mapping is
	// the presentation layout: d-pad arrows, A confirms, B goes back,
	// +/- drive the volume, Home escapes. Buttons one and two are left
	// unmapped so they keep their built-in display and locate actions.
	DefaultConfig = Config{
		Device: DeviceConfig{
			Address:         "",
			Discover:        false,
			PollInterval:    500 * time.Millisecond,
			SettleDelay:     100 * time.Millisecond,
			RumbleOnConnect: true,
		},
		Keyboard: KeyboardConfig{
			Name:       "Wiinote Keyboard",
			UinputPath: "/dev/uinput",
		},
		Mapping: map[string]string{
			"up":    "up",
			"down":  "down",
			"left":  "left",
			"right": "right",
			"a":     "enter",
			"b":     "left",
			"plus":  "volumeup",
			"minus": "volumedown",
			"home":  "esc",
		},
		Display: DisplayConfig{
			BatteryInterval: 20 * time.Second,
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wiinote")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Add config paths in order of precedence
		viper.AddConfigPath("/etc/wiinote")

		// If running with sudo, try the real user's config
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			viper.AddConfigPath(fmt.Sprintf("/home/%s/.config/wiinote", sudoUser))
		} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
			viper.AddConfigPath(filepath.Join(home, ".config", "wiinote"))
		}

		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("device.address", DefaultConfig.Device.Address)
	viper.SetDefault("device.discover", DefaultConfig.Device.Discover)
	viper.SetDefault("device.poll_interval", DefaultConfig.Device.PollInterval)
	viper.SetDefault("device.settle_delay", DefaultConfig.Device.SettleDelay)
	viper.SetDefault("device.rumble_on_connect", DefaultConfig.Device.RumbleOnConnect)

	viper.SetDefault("keyboard.name", DefaultConfig.Keyboard.Name)
	viper.SetDefault("keyboard.uinput_path", DefaultConfig.Keyboard.UinputPath)

	viper.SetDefault("mapping", DefaultConfig.Mapping)

	viper.SetDefault("display.battery_interval", DefaultConfig.Display.BatteryInterval)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine (use defaults); with an explicit
		// path viper reports it as a plain not-exist error rather
		// than ConfigFileNotFoundError.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	// For sudo, prefer system config
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/wiinote/wiinote.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/wiinote/wiinote.toml"
	}

	return filepath.Join(home, ".config", "wiinote", "wiinote.toml")
}
