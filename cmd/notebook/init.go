package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/notebook"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a notebook",
	Long: `Initialize a new notebook in the given directory (default: current directory).
It writes a notebook.yaml recording the adapter and locale so later commands
find the notebook from any subdirectory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dataDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			dir = wd
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}

		cfgFile := filepath.Join(dir, notebook.ConfigFileName)
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists", cfgFile)
		}
		cfg := notebook.FileConfig{Adapter: adapter, Locale: localeTag}
		if err := notebook.SaveConfig(cfgFile, cfg); err != nil {
			return err
		}

		// Opening creates the storage (directory or database file).
		dataDir = dir
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty notebook in", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
