// ABOUTME: Register command for examctl CLI
// ABOUTME: Creates an account and signs in with it

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/waynezhang680/examctl/internal/models"
)

var (
	registerUsername      string
	registerEmail         string
	registerPasswordStdin bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the exam platform",
	Long: `Create an account and sign in with it. The password is prompted twice unless
--password-stdin is given.

Example:
  examctl register --username bob --email bob@example.com`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			password, err := readPassword(os.Stdin, registerPasswordStdin, "Password: ")
			if err != nil {
				return reportError(w, err)
			}
			confirm := password
			if !registerPasswordStdin {
				confirm, err = readPassword(os.Stdin, false, "Confirm password: ")
				if err != nil {
					return reportError(w, err)
				}
			}

			return runRegister(ctx, a, w, models.RegisterRequest{
				Username:        registerUsername,
				Email:           registerEmail,
				Password:        password,
				ConfirmPassword: confirm,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Email address")
	registerCmd.Flags().BoolVar(&registerPasswordStdin, "password-stdin", false, "Read the password from stdin")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")
}

// runRegister creates the account and returns exit code
func runRegister(ctx context.Context, a *app, w io.Writer, form models.RegisterRequest) int {
	if _, code, ok := a.guard(w, "/register"); !ok {
		return code
	}

	if err := a.session.Register(ctx, form); err != nil {
		return reportError(w, err)
	}

	printSession(w, a, "Registered and logged in")
	return 0
}
