// ABOUTME: Status command for examctl CLI
// ABOUTME: Shows the local session state without contacting the platform

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/waynezhang680/examctl/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local session state",
	Long:  `Display the API URL, the session state and, for JWT tokens, when the token expires. Exits 1 when not logged in.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			return runStatus(a, w, time.Now())
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// sessionStatus is the status report
type sessionStatus struct {
	APIURL    string     `json:"api_url"`
	State     string     `json:"state"`
	Username  string     `json:"username,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	Storage   string     `json:"storage"`
}

// runStatus reports the session and returns exit code
func runStatus(a *app, w io.Writer, now time.Time) int {
	st := a.session.State()
	token := a.session.Token()

	status := sessionStatus{
		APIURL:  a.cfg.APIURL,
		State:   session.Describe(st),
		Storage: a.storage.Path(),
	}
	if identity, ok := a.session.Identity(); ok {
		status.Username = identity.Username
	}
	if sub, ok := session.TokenSubject(token); ok {
		status.Subject = sub
	}
	if exp, ok := session.TokenExpiry(token); ok {
		status.ExpiresAt = &exp
		status.Expired = !exp.After(now)
	}

	if IsJSONOutput() {
		writeJSON(w, status)
	} else {
		fmt.Fprintln(w, formatStatusHuman(status, now))
	}

	if token == "" {
		return 1
	}
	return 0
}

// formatStatusHuman formats the status report for human readability
func formatStatusHuman(s sessionStatus, now time.Time) string {
	out := fmt.Sprintf("API:      %s\nSession:  %s", s.APIURL, s.State)

	switch {
	case s.Username != "":
		out += fmt.Sprintf("\nUser:     %s", s.Username)
	case s.Subject != "":
		out += fmt.Sprintf("\nSubject:  %s", s.Subject)
	}

	if s.ExpiresAt != nil {
		if s.Expired {
			out += fmt.Sprintf("\nExpires:  expired %s ago", s.ExpiresAt.Sub(now).Abs().Round(time.Minute))
		} else {
			out += fmt.Sprintf("\nExpires:  in %s", s.ExpiresAt.Sub(now).Round(time.Minute))
		}
	}

	out += fmt.Sprintf("\nStorage:  %s", s.Storage)
	if s.State == "anonymous" {
		out += "\n\nNot logged in. Run 'examctl login' to sign in."
	}
	return out
}
