package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/model"
)

var (
	userRole     string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account",
	Example: `  timesheet user add admin --role admin
  echo "s3cret!" | timesheet user add client --role client`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Set a new password for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPasswd,
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", "client", "Role: admin or client")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (read from stdin when empty)")
	userPasswdCmd.Flags().StringVar(&userPassword, "password", "", "New password (read from stdin when empty)")
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userPasswdCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	pw, err := passwordInput(cmd.InOrStdin(), userPassword)
	if err != nil {
		return err
	}
	role := model.Role(userRole)
	return withApp(cmd.Context(), func(a *app) error {
		if err := a.auth.AddUser(cmd.Context(), args[0], pw, role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q.\n", role, args[0])
		return nil
	})
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	pw, err := passwordInput(cmd.InOrStdin(), userPassword)
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), func(a *app) error {
		if err := a.auth.ResetPassword(cmd.Context(), args[0], pw); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %q.\n", args[0])
		return nil
	})
}

// passwordInput returns flag if set, otherwise the first line of r.
func passwordInput(r io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if f, ok := r.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprint(os.Stderr, "Password: ")
		}
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", apperr.Validation("password is required")
	}
	return pw, nil
}
