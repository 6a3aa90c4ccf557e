package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/config"
	"github.com/rustyeddy/tvue/creds"
	"github.com/rustyeddy/tvue/errtally"
	"github.com/rustyeddy/tvue/tradervue"
)

var rootCmd = &cobra.Command{
	Use:   "tvue",
	Short: "A command-line client for the Tradervue trade journal",
	Long: `Tvue talks to the Tradervue API from the command line.

It provides tools for:
  - Creating, querying, updating and deleting trades
  - Importing trade executions with conflict retry and completion polling
  - Backing up a full account (journals, notes, trades) to a JSON artifact
  - Managing organization users
  - Storing the account password in the OS keyring

Passwords are resolved from the OS keyring; use 'tvue password set' once
before any command that talks to the service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile    string
	cfgUser    string
	cfgBaseURL string
	cfgTarget  string
	verbose    bool
)

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tvue: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&cfgUser, "username", "u", "", "Tradervue username (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cfgBaseURL, "base-url", "", "service URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cfgTarget, "target-user", "", "user id to act on behalf of (org admins)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, including full HTTP traffic")
}

// loadConfig merges the config file (when given) with the flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
	}
	if cfgUser != "" {
		cfg.Username = cfgUser
	}
	if cfgBaseURL != "" {
		cfg.BaseURL = cfgBaseURL
	}
	if cfgTarget != "" {
		cfg.TargetUser = cfgTarget
	}
	return cfg, nil
}

// run bundles the per-invocation state: one config, one logger, one error
// tally and one API client. Each invocation gets a fresh tally so error
// counts never leak between runs.
type run struct {
	cfg    *config.Config
	log    *log.Logger
	tally  *errtally.Tally
	client *tradervue.Client
}

// newRun resolves the credential and builds the client. The password
// lookup happens here, before any network call; a missing credential is
// fatal.
func newRun() (*run, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("no username; set one with --username or in the config file")
	}

	password, err := creds.Resolve(creds.Keyring{}, cfg.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve credential for %s (try 'tvue password set'): %w", cfg.Username, err)
	}

	tally := errtally.New()
	logger := errtally.Attach(tally, verbose)

	opts := []tradervue.Option{
		tradervue.WithBaseURL(cfg.BaseURL),
		tradervue.WithLogger(logger),
		tradervue.WithVerbose(verbose),
	}
	if cfg.TargetUser != "" {
		opts = append(opts, tradervue.WithTargetUser(cfg.TargetUser))
	}

	return &run{
		cfg:    cfg,
		log:    logger,
		tally:  tally,
		client: tradervue.NewClient(cfg.Username, password, cfg.UserAgent, opts...),
	}, nil
}

// finish folds the error tally into the command result: a nominally
// successful run that logged errors along the way still fails.
func (r *run) finish(err error) error {
	if err != nil {
		return err
	}
	return r.tally.Err()
}
