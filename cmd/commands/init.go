package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd creates the data directory and writes a default config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the data directory and default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("data-dir")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		configPath := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			fmt.Println("Config already exists:", configPath)
			return nil
		}

		if err := viper.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Println("Initialized data directory:", dir)
		fmt.Println("Wrote default config:", configPath)
		return nil
	},
}
