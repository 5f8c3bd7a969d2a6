// ABOUTME: Route command for examctl CLI
// ABOUTME: Prints the guard decision for a path under the current session

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/waynezhang680/examctl/internal/session"
)

var routeCmd = &cobra.Command{
	Use:   "route PATH",
	Short: "Show where a navigation to PATH would land",
	Long: `Resolve PATH against the client's route table and evaluate the route guard
for the saved session. Does not contact the platform.

Example:
  examctl route /exam/3`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			return runRoute(a, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

// runRoute prints the guard decision and returns exit code
func runRoute(a *app, w io.Writer, path string) int {
	decision, m := a.router.Navigate(a.session.Authenticated(), path)
	state := session.Describe(a.session.State())

	if IsJSONOutput() {
		output := map[string]interface{}{
			"path":     m.Path,
			"route":    m.Route.Name,
			"policy":   m.Route.Policy.String(),
			"session":  state,
			"proceed":  decision.Proceed,
			"redirect": decision.Target,
		}
		if len(m.Params) > 0 {
			output["params"] = m.Params
		}
		writeJSON(w, output)
		return 0
	}

	fmt.Fprintf(w, `Path:     %s
Route:    %s
Policy:   %s
Session:  %s
Decision: %s
`, m.Path, m.Route.Name, m.Route.Policy, state, decision)
	return 0
}
