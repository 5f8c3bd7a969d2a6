// ABOUTME: Wires configuration, storage, API client and session for commands
// ABOUTME: Maps errors to exit codes and evaluates route guards for CLI actions

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/waynezhang680/examctl/internal/client"
	"github.com/waynezhang680/examctl/internal/config"
	"github.com/waynezhang680/examctl/internal/exams"
	"github.com/waynezhang680/examctl/internal/router"
	"github.com/waynezhang680/examctl/internal/session"
	"github.com/waynezhang680/examctl/internal/storage"
)

// examCacheTTL bounds how long exam details are reused within one process
const examCacheTTL = 30 * time.Second

// app holds the components shared by every command
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	storage *storage.File
	client  *client.Client
	session *session.Store
	exams   *exams.Store
	router  *router.Router
}

// newApp builds one session store and injects it into the client pipeline
func newApp(cfg *config.Config, logger *slog.Logger) *app {
	st := storage.NewFile(cfg.ConfigDir)
	c := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout), client.WithLogger(logger))
	s := session.New(st, c, session.WithLogger(logger))
	c.UseCredentials(s)

	return &app{
		cfg:     cfg,
		logger:  logger,
		storage: st,
		client:  c,
		session: s,
		exams:   exams.NewStore(c, logger, exams.WithDetailTTL(examCacheTTL)),
		router:  router.New(),
	}
}

// guard evaluates the route for a CLI action. It prints guidance and returns
// false with an exit code when the action must not run.
func (a *app) guard(w io.Writer, path string) (router.Match, int, bool) {
	decision, m := a.router.Navigate(a.session.Authenticated(), path)
	if decision.Proceed {
		return m, 0, true
	}

	switch decision.Target {
	case router.LoginPath:
		fmt.Fprintln(w, "Not logged in. Run 'examctl login' first.")
	default:
		name := "a user"
		if id, ok := a.session.Identity(); ok {
			name = id.Username
		}
		fmt.Fprintf(w, "Already logged in as %s. Run 'examctl logout' first.\n", name)
	}
	return m, 1, false
}

// reportError prints err and returns the exit code for it:
// 1 for rejected credentials or an expired session, 2 for anything else
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)

	if client.IsUnauthorized(err) {
		fmt.Fprintln(w, "Your session has expired. Run 'examctl login' to sign in again.")
		return 1
	}
	if errors.Is(err, client.ErrAuthentication) {
		return 1
	}
	return 2
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
