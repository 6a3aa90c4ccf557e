package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rustyeddy/tvue/creds"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Manage the stored Tradervue password",
	Long: `Password stores the account password in the operating system's
keyring. Nothing else in tvue ever writes a password to disk.`,
}

var passwordSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the password for the configured username",
	RunE:  runPasswordSet,
}

var passwordDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored password for the configured username",
	RunE:  runPasswordDelete,
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.AddCommand(passwordSetCmd, passwordDeleteCmd)
}

func configuredUsername() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Username == "" {
		return "", fmt.Errorf("no username; set one with --username or in the config file")
	}
	return cfg.Username, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func runPasswordSet(cmd *cobra.Command, args []string) error {
	username, err := configuredUsername()
	if err != nil {
		return err
	}

	secret, err := promptPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("empty password not stored")
	}

	again, err := promptPassword("Again: ")
	if err != nil {
		return err
	}
	if secret != again {
		return fmt.Errorf("passwords do not match")
	}

	if err := (creds.Keyring{}).Set(creds.Service, username, secret); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "stored password for %s\n", username)
	return nil
}

func runPasswordDelete(cmd *cobra.Command, args []string) error {
	username, err := configuredUsername()
	if err != nil {
		return err
	}

	err = (creds.Keyring{}).Delete(creds.Service, username)
	if errors.Is(err, creds.ErrNotFound) {
		return fmt.Errorf("no password stored for %s", username)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "removed password for %s\n", username)
	return nil
}
