package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebook/pkg/core"
)

var deleteCmd = &cobra.Command{
	Use:       "delete {note|reminder|folder} ID",
	Short:     "Delete a record",
	Long:      `Delete removes every record with the given id from its collection. Lists are deleted as notes. Unknown ids are not an error.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"note", "reminder", "folder"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id := args[0], core.ID(args[1])

		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		ctx := context.Background()
		switch kind {
		case "note", "list":
			err = nb.DeleteNote(ctx, id)
		case "reminder":
			err = nb.DeleteReminder(ctx, id)
		case "folder":
			err = nb.DeleteFolder(ctx, id)
		default:
			return fmt.Errorf("unknown record kind %q", kind)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", kind, id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
