package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebook/pkg/core"
)

var (
	addTitle   string
	addContent string
	addColor   string
	addItems   []string
	addMessage string
	addDate    string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note, list, reminder or folder",
}

var addNoteCmd = &cobra.Command{
	Use:   "note",
	Short: "Create a plain note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		n, err := nb.CreateNote(context.Background(), addTitle, addContent, addColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note created: %s\n", n.ID)
		return nil
	},
}

var addListCmd = &cobra.Command{
	Use:   "list",
	Short: "Create a list",
	Example: `  notebook add list --title Groceries --item milk --item eggs`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		n, err := nb.CreateList(context.Background(), addTitle, addItems, addColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "List created: %s\n", n.ID)
		return nil
	},
}

var addReminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Create a reminder",
	Long: `Create a reminder. --date accepts RFC 3339 ("2025-03-15T09:30:00-03:00"),
a local date-time ("2025-03-15 09:30") or a bare date ("2025-03-15").`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		date, err := core.ParseDate(addDate, nb.View.Location)
		if err != nil {
			return err
		}
		r, err := nb.CreateReminder(context.Background(), addMessage, date, addColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reminder created: %s (%s)\n", r.ID, nb.View.FormatDate(date))
		return nil
	},
}

var addFolderCmd = &cobra.Command{
	Use:   "folder NAME",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook(cmd)
		if err != nil {
			return err
		}
		defer nb.Close()

		f, err := nb.CreateFolder(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Folder created: %s\n", f.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.AddCommand(addNoteCmd, addListCmd, addReminderCmd, addFolderCmd)

	addNoteCmd.Flags().StringVar(&addTitle, "title", "", "Note title")
	addNoteCmd.Flags().StringVar(&addContent, "content", "", "Note text")
	addNoteCmd.Flags().StringVar(&addColor, "color", "", "Card color (default: palette)")

	addListCmd.Flags().StringVar(&addTitle, "title", "", "List title")
	addListCmd.Flags().StringArrayVar(&addItems, "item", nil, "List item (repeatable)")
	addListCmd.Flags().StringVar(&addColor, "color", "", "Card color (default: palette)")

	addReminderCmd.Flags().StringVar(&addMessage, "message", "", "Reminder text")
	addReminderCmd.Flags().StringVar(&addDate, "date", "", "Due date")
	addReminderCmd.Flags().StringVar(&addColor, "color", "", "Card color (default: palette)")
	_ = addReminderCmd.MarkFlagRequired("date")
}
