package cmd

import (
	"fmt"
	"os"

	"github.com/hsanzg/wiinote/internal/config"
	"github.com/hsanzg/wiinote/internal/logger"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Long: `Write a configuration file with the default settings, so the
mapping table and device options can be edited. Honors --config;
otherwise the file goes to the user config directory (or /etc/wiinote
when running as root).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			config.SetConfigPath(cfgFile)
		}
		if err := config.Init(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Wrote default config to %s", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			config.SetConfigPath(cfgFile)
		}
		fmt.Println(config.GetConfigPath())
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
