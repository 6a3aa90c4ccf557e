package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tvue/tradervue"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage organization users (org managers only)",
}

var (
	userEmail    string
	userPlan     string
	userName     string
	userPassword string
	userTrialEnd string
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organization's users",
	RunE:  runUserList,
}

var userShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserShow,
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new organization user",
	RunE:  runUserCreate,
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Update username, email or plan of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserUpdate,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd, userShowCmd, userCreateCmd, userUpdateCmd)

	userCreateCmd.Flags().StringVar(&userName, "name", "", "username (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email (required)")
	userCreateCmd.Flags().StringVar(&userPlan, "plan", "Free", "plan: Free, Silver or Gold")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password (required)")
	userCreateCmd.Flags().StringVar(&userTrialEnd, "trial-end", "", "trial end date (YYYY-MM-DD)")
	userCreateCmd.MarkFlagRequired("name")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("password")

	userUpdateCmd.Flags().StringVar(&userName, "name", "", "new username")
	userUpdateCmd.Flags().StringVar(&userEmail, "email", "", "new email")
	userUpdateCmd.Flags().StringVar(&userPlan, "plan", "", "new plan: Free, Silver or Gold")
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad user id %q: %w", arg, err)
	}
	return id, nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	r, err := newRun()
	if err != nil {
		return err
	}

	users, err := r.client.GetUsers(cmd.Context())
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(users))
}

func runUserShow(cmd *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	user, err := r.client.GetUser(cmd.Context(), id)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(printJSON(user))
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	nu := tradervue.NewUser{
		Username: userName,
		Email:    userEmail,
		Plan:     userPlan,
		Password: userPassword,
	}
	if userTrialEnd != "" {
		d, err := time.Parse("2006-01-02", userTrialEnd)
		if err != nil {
			return fmt.Errorf("bad --trial-end date: %w", err)
		}
		nu.TrialEnd = d
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	id, err := r.client.CreateUser(cmd.Context(), nu)
	if err != nil {
		return r.finish(err)
	}
	fmt.Println(id)
	return r.finish(nil)
}

func runUserUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	r, err := newRun()
	if err != nil {
		return err
	}

	return r.finish(r.client.UpdateUser(cmd.Context(), id, tradervue.UserUpdate{
		Username: userName,
		Email:    userEmail,
		Plan:     userPlan,
	}))
}
