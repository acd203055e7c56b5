package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/notebook"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	dataDir    string
	adapter    string
	configPath string
	localeTag  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notebook",
	Short: "A local notebook for notes, lists, reminders and folders",
	Long: `Notebook keeps notes, lists, reminders and folders as JSON collections
in a local directory or SQLite file, and renders them the way the app screens do.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory (default: nearest notebook above the working directory)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", notebook.AdapterFS, "Storage adapter: fs, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: notebook.yaml in the data directory)")
	rootCmd.PersistentFlags().StringVar(&localeTag, "locale", "", "Display locale: pt-BR or en-US")
}

// openNotebook opens the notebook selected by the global flags. Flags left at
// their defaults do not override the config file.
func openNotebook(cmd *cobra.Command, extra ...notebook.Option) (*notebook.Notebook, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}

	opts := []notebook.Option{notebook.WithLogger(slog.Default())}
	if configPath != "" {
		opts = append(opts, notebook.WithConfigFile(configPath))
	}
	if f := cmd.Flag("adapter"); f != nil && f.Changed {
		opts = append(opts, notebook.WithAdapter(adapter))
	}
	if localeTag != "" {
		opts = append(opts, notebook.WithLocale(localeTag))
	}
	opts = append(opts, extra...)

	nb, err := notebook.New(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open notebook: %w", err)
	}
	return nb, nil
}

func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	root, err := notebook.FindRoot(wd)
	if errors.Is(err, notebook.ErrNoRoot) {
		return "", errors.New("not inside a notebook (run 'notebook init' or pass --data)")
	}
	if err != nil {
		return "", err
	}
	return root, nil
}
