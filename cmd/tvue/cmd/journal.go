package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/tradervue"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage journal entries",
	Long: `Journal manages the per-day journal entries, the API equivalent of
the website's journal page. Notes may include Markdown.`,
}

var (
	journalDate  string
	journalStart string
	journalEnd   string
	journalNotes string
	journalMax   int
)

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, optionally for a date or range",
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <entry-id|YYYY-MM-DD>",
	Short: "Show one journal entry by id or date",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the journal entry for a date",
	RunE:  runJournalCreate,
}

var journalUpdateCmd = &cobra.Command{
	Use:   "update <entry-id>",
	Short: "Replace the notes of a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalUpdate,
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDelete,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalShowCmd, journalCreateCmd,
		journalUpdateCmd, journalDeleteCmd)

	journalListCmd.Flags().StringVar(&journalDate, "date", "", "entry for one date (YYYY-MM-DD)")
	journalListCmd.Flags().StringVar(&journalStart, "start", "", "entries on or after this date (YYYY-MM-DD)")
	journalListCmd.Flags().StringVar(&journalEnd, "end", "", "entries on or before this date (YYYY-MM-DD)")
	journalListCmd.Flags().IntVarP(&journalMax, "max", "m", 25, "maximum entries to return (0 = all)")

	journalCreateCmd.Flags().StringVar(&journalDate, "date", "", "entry date (YYYY-MM-DD, default today)")
	journalCreateCmd.Flags().StringVar(&journalNotes, "notes", "", "entry notes (Markdown allowed)")

	journalUpdateCmd.Flags().StringVar(&journalNotes, "notes", "", "replacement notes (Markdown allowed)")
	journalUpdateCmd.MarkFlagRequired("notes")
}

func parseDay(flag, value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad %s date (want YYYY-MM-DD): %w", flag, err)
	}
	return d, nil
}

func journalListFilter() (tradervue.JournalFilter, error) {
	var f tradervue.JournalFilter
	var err error
	if journalDate != "" {
		if f.Date, err = parseDay("--date", journalDate); err != nil {
			return f, err
		}
	}
	if journalStart != "" {
		if f.StartDate, err = parseDay("--start", journalStart); err != nil {
			return f, err
		}
	}
	if journalEnd != "" {
		if f.EndDate, err = parseDay("--end", journalEnd); err != nil {
			return f, err
		}
	}
	return f, nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	filter, err := journalListFilter()
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	entries, err := r.client.GetJournals(cmd.Context(), filter, 0, journalMax)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(entries))
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		entry, err := r.client.GetJournal(cmd.Context(), id)
		if err != nil {
			return r.finish(err)
		}
		return r.finish(printJSON(entry))
	}

	day, err := parseDay("entry", args[0])
	if err != nil {
		return err
	}
	entry, err := r.client.GetJournalByDate(cmd.Context(), day)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(entry))
}

func runJournalCreate(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if journalDate != "" {
		var err error
		if day, err = parseDay("--date", journalDate); err != nil {
			return err
		}
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	id, err := r.client.CreateJournal(cmd.Context(), day, journalNotes)
	if err != nil {
		return r.finish(err)
	}
	fmt.Println(id)
	return r.finish(nil)
}

func runJournalUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad entry id %q: %w", args[0], err)
	}

	r, err := newRun()
	if err != nil {
		return err
	}
	return r.finish(r.client.UpdateJournal(cmd.Context(), id, journalNotes))
}

func runJournalDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad entry id %q: %w", args[0], err)
	}

	r, err := newRun()
	if err != nil {
		return err
	}
	return r.finish(r.client.DeleteJournal(cmd.Context(), id))
}
