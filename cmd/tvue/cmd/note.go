package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage journal notes",
}

var (
	noteText string
	noteMax  int
)

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal notes",
	RunE:  runNoteList,
}

var noteShowCmd = &cobra.Command{
	Use:   "show <note-id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteShow,
}

var noteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new note",
	RunE:  runNoteCreate,
}

var noteUpdateCmd = &cobra.Command{
	Use:   "update <note-id>",
	Short: "Replace the text of a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteUpdate,
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <note-id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteDelete,
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteListCmd, noteShowCmd, noteCreateCmd, noteUpdateCmd, noteDeleteCmd)

	noteListCmd.Flags().IntVarP(&noteMax, "max", "m", 25, "maximum notes to return (0 = all)")

	noteCreateCmd.Flags().StringVar(&noteText, "notes", "", "note text (Markdown allowed)")
	noteCreateCmd.MarkFlagRequired("notes")

	noteUpdateCmd.Flags().StringVar(&noteText, "notes", "", "replacement text (Markdown allowed)")
	noteUpdateCmd.MarkFlagRequired("notes")
}

func parseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad note id %q: %w", arg, err)
	}
	return id, nil
}

func runNoteList(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	notes, err := r.client.GetNotes(cmd.Context(), 0, noteMax)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(notes))
}

func runNoteShow(cmd *cobra.Command, args []string) error {
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	note, err := r.client.GetNote(cmd.Context(), id)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(note))
}

func runNoteCreate(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	id, err := r.client.CreateNote(cmd.Context(), noteText)
	if err != nil {
		return r.finish(err)
	}
	fmt.Println(id)
	return r.finish(nil)
}

func runNoteUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}
	return r.finish(r.client.UpdateNote(cmd.Context(), id, noteText))
}

func runNoteDelete(cmd *cobra.Command, args []string) error {
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}
	return r.finish(r.client.DeleteNote(cmd.Context(), id))
}
