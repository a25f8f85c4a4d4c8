package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hsanzg/wiinote/internal/clicker"
	"github.com/hsanzg/wiinote/internal/config"
	"github.com/hsanzg/wiinote/internal/keyboard"
	"github.com/hsanzg/wiinote/internal/logger"
	"github.com/hsanzg/wiinote/internal/wiimote"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	cfgFile    string
	discover   bool
	devicePath string
	pickDevice bool

	rootCmd = &cobra.Command{
		Use:   "wiinote",
		Short: "Wiinote - use a Wii Remote as a presentation clicker",
		Long: `Wiinote turns a paired Wii Remote into a presentation clicker.
It reads button events from the hid-wiimote kernel driver and injects
the mapped keystrokes through a uinput virtual keyboard, so it works
on X11 and Wayland alike.`,
		SilenceUsage: true,
		RunE:         runClicker,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path")
	rootCmd.Flags().BoolVarP(&discover, "discover", "d", false, "Poll for a remote in discoverable mode instead of exiting when none is connected")
	rootCmd.Flags().StringVar(&devicePath, "device", "", "Connect to the remote with this HID identifier (see the list command)")
	rootCmd.Flags().BoolVar(&pickDevice, "pick", false, "Choose interactively when several remotes are connected")

	viper.BindPFlag("device.discover", rootCmd.Flags().Lookup("discover"))
	viper.BindPFlag("device.address", rootCmd.Flags().Lookup("device"))
}

func runClicker(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		config.SetConfigPath(cfgFile)
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.Get()
	if cfg.Logging.LogLevel != "" {
		logger.SetLevel(cfg.Logging.LogLevel)
	}

	mapping, err := clicker.NewMapping(cfg.Mapping)
	if err != nil {
		return err
	}

	if pickDevice && cfg.Device.Address == "" {
		addrs, err := wiimote.NewMonitor(false, 0).Enumerate()
		if err != nil {
			return err
		}
		addr, err := wiimote.PickDevice(addrs)
		if err != nil {
			return err
		}
		cfg.Device.Address = addr.HIDPath
	}

	kb, err := keyboard.New(cfg.Keyboard.UinputPath, cfg.Keyboard.Name)
	if err != nil {
		return err
	}
	defer kb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return clicker.New(cfg, mapping, kb).Run(ctx)
}
