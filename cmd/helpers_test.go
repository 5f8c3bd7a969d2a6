// ABOUTME: Shared helpers for command tests
// ABOUTME: Builds an app wired to the in-memory fake platform API

package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/waynezhang680/examctl/internal/apitest"
	"github.com/waynezhang680/examctl/internal/config"
	"github.com/waynezhang680/examctl/internal/models"
)

func newTestAPI(t *testing.T) *apitest.Server {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)

	api.AddUser(models.Identity{Username: "alice", Email: "alice@example.com"}, "p1")
	api.AddExam(models.Exam{ID: 1, Title: "Go Basics", Description: "Syntax and types", Duration: 30, TotalQuestions: 10, Status: models.ExamPending})
	api.AddExam(models.Exam{ID: 2, Title: "Concurrency", Duration: 45, TotalQuestions: 15, Status: models.ExamCompleted})
	api.AddExam(models.Exam{ID: 3, Title: "Testing", Duration: 20, TotalQuestions: 8, Status: models.ExamPending})
	return api
}

// newTestApp wires an app against api with a private config directory
func newTestApp(t *testing.T, api *apitest.Server, configDir string) *app {
	t.Helper()
	if configDir == "" {
		configDir = t.TempDir()
	}
	cfg := &config.Config{
		APIURL:    api.URL(),
		Timeout:   2 * time.Second,
		PageSize:  10,
		ConfigDir: configDir,
	}
	return newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// loggedInApp returns an app whose session holds token for alice
func loggedInApp(t *testing.T, api *apitest.Server, token string) *app {
	t.Helper()
	api.SetNextToken(token)
	a := newTestApp(t, api, "")

	var buf bytes.Buffer
	if code := runLogin(context.Background(), a, &buf, "alice", "p1"); code != 0 {
		t.Fatalf("login failed with exit code %d: %s", code, buf.String())
	}
	return a
}

func withJSONOutput(t *testing.T) {
	t.Helper()
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
}
