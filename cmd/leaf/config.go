package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmcdole/leaf/internal/adapter"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the leaf configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = filepath.Join(adapter.DefaultConfigPath(), "config.yaml")
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := adapter.WriteConfig(path, adapter.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := adapter.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if file := settings.File(); file != "" {
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No config file; using defaults")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configPathCmd)
}
