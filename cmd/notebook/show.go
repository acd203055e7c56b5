package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebook/pkg/view"
)

var outputJSON bool

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the dashboard: upcoming reminders and every note block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		home := nb.Home(context.Background())
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), home)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderHome(home))
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Show plain notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		cards := nb.View.NotesGrid(nb.Notes(context.Background()))
		return printCards(cmd, cards, halfWidth)
	},
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show lists, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		cards := nb.View.Lists(nb.Notes(context.Background()))
		return printCards(cmd, cards, fullWidth)
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Show dated reminders, latest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		cards := nb.View.Dates(nb.Reminders(context.Background()))
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), cards)
		}
		for _, c := range cards {
			fmt.Fprintln(cmd.OutOrStdout(), renderReminder(c))
		}
		return nil
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Show folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		rows := nb.View.Folders(nb.Folders(context.Background()))
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), rows)
		}
		for _, f := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", f.ID, f.Created, f.Name)
		}
		return nil
	},
}

func printCards(cmd *cobra.Command, cards []view.Card, width int) error {
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), cards)
	}
	if len(cards) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderGrid(cards, width))
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{homeCmd, notesCmd, listsCmd, datesCmd, foldersCmd} {
		c.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
		rootCmd.AddCommand(c)
	}
}
