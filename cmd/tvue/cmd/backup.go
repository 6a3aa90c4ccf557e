package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/backup"
	"github.com/rustyeddy/tvue/history"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the full account to a JSON artifact",
	Long: `Backup downloads the account's journals, notes and trades (each trade
enriched with its executions and comments) into one pretty-printed JSON
document.

Individual failures are logged and skipped so one bad trade cannot abort
the whole run, but any logged error makes the run's exit status nonzero.
The document can be zipped or xz-compressed and moved into an archive
directory afterwards.`,
	RunE: runBackup,
}

var extractCmd = &cobra.Command{
	Use:   "extract <backup.zip> [dir]",
	Short: "Unpack a zipped backup artifact",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExtract,
}

var (
	backupOut  string
	backupDir  string
	backupZip  bool
	backupXZ   bool
	backupPage int
)

func init() {
	rootCmd.AddCommand(backupCmd, extractCmd)

	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "output path (default from config)")
	backupCmd.Flags().StringVarP(&backupDir, "dir", "d", "", "move the finished artifact into this directory")
	backupCmd.Flags().BoolVar(&backupZip, "zip", false, "compress the artifact to a single-entry zip")
	backupCmd.Flags().BoolVar(&backupXZ, "xz", false, "compress the artifact with xz")
	backupCmd.Flags().IntVar(&backupPage, "page-size", 0, "records per page, capped at the service maximum")
}

// recordRun appends a row to the history ledger when one is configured.
// History failures are reported but never change the run outcome.
func recordRun(r *run, kind string, started time.Time, ok bool) {
	if r.cfg.HistoryDB == "" {
		return
	}
	h, err := history.Open(r.cfg.HistoryDB)
	if err != nil {
		r.log.Warnf("history unavailable: %v", err)
		return
	}
	defer h.Close()

	err = h.RecordRun(history.Run{
		Kind:       kind,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		OK:         ok && r.tally.Count() == 0,
		Errors:     r.tally.Count(),
		Detail:     r.tally.Text(),
	})
	if err != nil {
		r.log.Warnf("history not recorded: %v", err)
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	if backupZip && backupXZ {
		return fmt.Errorf("--zip and --xz are mutually exclusive")
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	out := backupOut
	if out == "" {
		out = r.cfg.Backup.Out
	}
	dir := backupDir
	if dir == "" {
		dir = r.cfg.Backup.Dir
	}
	compress := r.cfg.Backup.Compress
	if backupZip {
		compress = "zip"
	}
	if backupXZ {
		compress = "xz"
	}

	started := time.Now()
	runner := &backup.Runner{Client: r.client, Log: r.log, PageSize: backupPage}
	doc := runner.Run(cmd.Context())

	if err := backup.WriteDocument(out, doc); err != nil {
		r.log.Errorf("write backup: %v", err)
		recordRun(r, history.KindBackup, started, false)
		return r.finish(nil)
	}

	artifact := out
	switch compress {
	case "zip":
		artifact, err = backup.Zip(out)
	case "xz":
		artifact, err = backup.XZ(out)
	}
	if err != nil {
		r.log.Errorf("compress backup: %v", err)
		recordRun(r, history.KindBackup, started, false)
		return r.finish(nil)
	}

	if dir != "" {
		artifact, err = backup.MoveTo(artifact, dir)
		if err != nil {
			r.log.Errorf("move backup: %v", err)
			recordRun(r, history.KindBackup, started, false)
			return r.finish(nil)
		}
	}

	fmt.Println(artifact)
	recordRun(r, history.KindBackup, started, true)
	return r.finish(nil)
}

func runExtract(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 2 {
		dir = args[1]
	}
	return backup.Extract(args[0], dir)
}
