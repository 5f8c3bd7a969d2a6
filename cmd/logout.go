// ABOUTME: Logout command for examctl CLI
// ABOUTME: Clears the session and erases the saved token

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			return runLogout(a, w)
		})
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session. Logging out twice is not an error.
func runLogout(a *app, w io.Writer) int {
	wasAuthenticated := a.session.Authenticated()
	a.session.Logout()

	if IsJSONOutput() {
		writeJSON(w, map[string]bool{"logged_out": wasAuthenticated})
		return 0
	}
	if wasAuthenticated {
		fmt.Fprintln(w, "Logged out.")
	} else {
		fmt.Fprintln(w, "Not logged in.")
	}
	return 0
}
