package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebook/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print collection changes as they happen",
	Long: `Watch prints one line per change to the collections, including changes made
by other processes. The optional pattern filters collection keys (e.g. "notes").`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		if err := nb.Start(ctx); err != nil {
			return err
		}
		src := lifecycle.NewSource(nb.Hub, pattern)
		if err := src.Start(ctx); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes. Press Ctrl+C to stop.")
		for e := range src.Events() {
			fmt.Fprintln(cmd.OutOrStdout(), e.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
