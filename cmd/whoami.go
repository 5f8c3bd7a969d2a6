// ABOUTME: Whoami command for examctl CLI
// ABOUTME: Fetches the identity behind the saved session token

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long:  `Show the user behind the saved session. The identity is fetched from the platform, so an expired token is detected and cleared.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami rehydrates the session and returns exit code
func runWhoami(ctx context.Context, a *app, w io.Writer) int {
	if _, code, ok := a.guard(w, "/"); !ok {
		return code
	}

	if err := a.session.Rehydrate(ctx); err != nil {
		return reportError(w, err)
	}

	identity, ok := a.session.Identity()
	if !ok {
		fmt.Fprintln(w, "Not logged in. Run 'examctl login' first.")
		return 1
	}

	if IsJSONOutput() {
		writeJSON(w, identity)
		return 0
	}

	fmt.Fprintf(w, "Username: %s\n", identity.Username)
	fmt.Fprintf(w, "Email:    %s\n", identity.Email)
	if identity.ID != 0 {
		fmt.Fprintf(w, "ID:       %d\n", identity.ID)
	}
	return 0
}
