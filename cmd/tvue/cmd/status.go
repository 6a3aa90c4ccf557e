package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/history"
)

var statusCmd = &cobra.Command{
	Use:   "status [import-id]",
	Short: "Show the state of the current (or given) import",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent backup and import runs from the local ledger",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(statusCmd, historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	importID := ""
	if len(args) == 1 {
		importID = args[0]
	}

	state, err := r.client.GetImportStatus(cmd.Context(), importID)
	if err != nil {
		return r.finish(err)
	}

	var pretty json.RawMessage = state.Raw
	return r.finish(printJSON(pretty))
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history_db configured")
	}

	h, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer h.Close()

	runs, err := h.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		verdict := "ok"
		if !run.OK {
			verdict = fmt.Sprintf("FAILED (%d error(s))", run.Errors)
		}
		fmt.Printf("%s  %-7s %s  %s\n",
			run.RunID, run.Kind, run.StartedAt.Format("2006-01-02 15:04:05"), verdict)
	}
	return nil
}
