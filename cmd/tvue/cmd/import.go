package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/history"
	"github.com/rustyeddy/tvue/tradervue"
)

var importCmd = &cobra.Command{
	Use:   "import <executions-file>",
	Short: "Import trade executions from a JSON or CSV file",
	Long: `Import submits a batch of executions to the service.

The file may be JSON (an array of execution objects, or an object with an
"executions" array) or CSV with a datetime,symbol,quantity,price,...
header. Only one import runs per account at a time; a busy service is
retried up to --retries times. With --wait the command polls the import
status until it finishes or --wait-retries polls have been made.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importAccountTag string
	importTags       []string
	importAllowDup   bool
	importOverlay    bool
	importRetries    int
	importWait       bool
	importWaitTries  int
	importInterval   time.Duration
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importAccountTag, "account-tag", "", "account tag for the imported trades")
	importCmd.Flags().StringSliceVarP(&importTags, "tag", "t", nil, "tag to apply (repeatable)")
	importCmd.Flags().BoolVar(&importAllowDup, "allow-duplicates", false, "disable the service's duplicate detection")
	importCmd.Flags().BoolVar(&importOverlay, "overlay-commissions", false, "update existing trades with commission/fee data only")
	importCmd.Flags().IntVar(&importRetries, "retries", 0, "submission attempts while another import is running (0 = config default)")
	importCmd.Flags().BoolVarP(&importWait, "wait", "w", false, "wait for the import to finish")
	importCmd.Flags().IntVar(&importWaitTries, "wait-retries", 0, "status polls before giving up (0 = config default)")
	importCmd.Flags().DurationVar(&importInterval, "wait-interval", 0, "poll interval (0 = config default)")
}

// readExecutions loads an executions file, dispatching on extension.
func readExecutions(path string) ([]tradervue.Execution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read executions file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		var execs []tradervue.Execution
		if err := gocsv.UnmarshalBytes(data, &execs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return execs, nil
	}

	var execs []tradervue.Execution
	if err := json.Unmarshal(data, &execs); err == nil {
		return execs, nil
	}

	var envelope struct {
		Executions []tradervue.Execution `json:"executions"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Executions == nil {
		return nil, fmt.Errorf("%s is neither an execution array nor an object with an 'executions' array", path)
	}
	return envelope.Executions, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	execs, err := readExecutions(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	accountTag := importAccountTag
	if accountTag == "" {
		accountTag = r.cfg.Import.AccountTag
	}
	retries := importRetries
	if retries <= 0 {
		retries = r.cfg.Import.Retries
	}
	waitTries := importWaitTries
	if waitTries <= 0 {
		waitTries = r.cfg.Import.WaitRetries
	}
	interval := importInterval
	if interval <= 0 {
		interval, err = time.ParseDuration(r.cfg.Import.WaitInterval)
		if err != nil {
			return fmt.Errorf("bad import.wait_interval in config: %w", err)
		}
	}

	started := time.Now()
	sub, err := r.client.SubmitImport(cmd.Context(), tradervue.ImportRequest{
		Executions:         execs,
		AccountTag:         accountTag,
		Tags:               importTags,
		AllowDuplicates:    importAllowDup,
		OverlayCommissions: importOverlay,
	}, retries)
	if err != nil {
		r.log.Errorf("import of %d execution(s) failed: %v", len(execs), err)
		recordRun(r, history.KindImport, started, false)
		return r.finish(nil)
	}

	r.log.Infof("import of %d execution(s) queued", len(execs))

	if !importWait {
		fmt.Println("queued")
		recordRun(r, history.KindImport, started, true)
		return r.finish(nil)
	}

	state, err := r.client.AwaitImport(cmd.Context(), sub.ID, waitTries, interval)
	if err != nil {
		r.log.Errorf("import wait: %v", err)
		recordRun(r, history.KindImport, started, false)
		return r.finish(nil)
	}

	if state.Status == tradervue.ImportFailed {
		r.log.Errorf("import reported failures: %s", string(state.Raw))
	}
	fmt.Println(state.Status)
	recordRun(r, history.KindImport, started, state.Status == tradervue.ImportSucceeded)
	return r.finish(nil)
}
