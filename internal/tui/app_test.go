// ABOUTME: Tests for the root TUI model
// ABOUTME: Drives navigation, auth flows and exam screens against the fake API

package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waynezhang680/examctl/internal/apitest"
	"github.com/waynezhang680/examctl/internal/client"
	"github.com/waynezhang680/examctl/internal/exams"
	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/router"
	"github.com/waynezhang680/examctl/internal/session"
	"github.com/waynezhang680/examctl/internal/storage"
	"github.com/waynezhang680/examctl/internal/tui/authform"
	"github.com/waynezhang680/examctl/internal/tui/examdetail"
	"github.com/waynezhang680/examctl/internal/tui/examlist"
	"github.com/waynezhang680/examctl/internal/tui/menu"
)

type harness struct {
	api     *apitest.Server
	session *session.Store
	exams   *exams.Store
	storage *storage.Memory
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)
	api.AddUser(models.Identity{Username: "alice", Email: "alice@example.com"}, "p1")
	api.AddExam(models.Exam{ID: 1, Title: "Go Basics", Duration: 30, TotalQuestions: 10, Status: models.ExamPending})
	api.AddExam(models.Exam{ID: 2, Title: "Concurrency", Duration: 45, TotalQuestions: 15, Status: models.ExamCompleted})
	return newHarnessWithStorage(t, api, storage.NewMemory())
}

func newHarnessWithStorage(t *testing.T, api *apitest.Server, mem *storage.Memory) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := client.New(api.URL(), client.WithTimeout(2*time.Second), client.WithLogger(logger))
	s := session.New(mem, c, session.WithLogger(logger))
	c.UseCredentials(s)
	e := exams.NewStore(c, logger, exams.WithDetailTTL(time.Minute))

	return &harness{
		api:     api,
		session: s,
		exams:   e,
		storage: mem,
		deps: Deps{
			Session:  s,
			Exams:    e,
			Router:   router.New(),
			APIURL:   api.URL(),
			PageSize: 10,
			Logger:   logger,
		},
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.api.SetNextToken("tok123")
	if err := h.session.Login(context.Background(), "alice", "p1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

// collect runs cmd and returns the messages it produces until none arrive
// for a short idle window. Batches are expanded; slow timers are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msgs := make(chan tea.Msg, 64)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, child := range batch {
					run(child)
				}
				return
			}
			msgs <- msg
		}()
	}
	run(cmd)

	var out []tea.Msg
	for {
		select {
		case msg := <-msgs:
			out = append(out, msg)
		case <-time.After(250 * time.Millisecond):
			return out
		}
	}
}

// relevant reports whether msg is one the app reacts to directly
func relevant(msg tea.Msg) bool {
	switch msg.(type) {
	case sessionChangedMsg, authResultMsg, examsLoadedMsg, examLoadedMsg, examStartedMsg,
		menu.SelectedMsg, authform.LoginSubmittedMsg, authform.RegisterSubmittedMsg,
		authform.SwitchMsg, examlist.SelectedMsg, examlist.PageMsg, examdetail.StartMsg:
		return true
	}
	return false
}

// send delivers msg and processes follow-up messages until the app settles
func send(a *App, msg tea.Msg) {
	_, cmd := a.Update(msg)
	pump(a, cmd, 0)
}

func pump(a *App, cmd tea.Cmd, depth int) {
	if depth > 8 {
		return
	}
	for _, msg := range collect(cmd) {
		if !relevant(msg) {
			continue
		}
		_, next := a.Update(msg)
		pump(a, next, depth+1)
	}
}

func start(h *harness, path string) *App {
	a := New(context.Background(), h.deps, path)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	pump(a, a.Init(), 0)
	return a
}

func TestApp_StartRouteGuard(t *testing.T) {
	tests := []struct {
		name      string
		loggedIn  bool
		path      string
		wantRoute string
	}{
		{"guest on home goes to login", false, "/", router.RouteLogin},
		{"guest on exams goes to login", false, "/exams", router.RouteLogin},
		{"guest on register stays", false, "/register", router.RouteRegister},
		{"guest on unknown path sees not found", false, "/nowhere", router.RouteNotFound},
		{"user on login goes home", true, "/login", router.RouteHome},
		{"user on register goes home", true, "/register", router.RouteHome},
		{"user on exams stays", true, "/exams", router.RouteExams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.loggedIn {
				h.login(t)
			}

			a := start(h, tt.path)

			if got := a.Route().Route.Name; got != tt.wantRoute {
				t.Errorf("route = %q, want %q", got, tt.wantRoute)
			}
		})
	}
}

func TestApp_LoginSuccessNavigatesHome(t *testing.T) {
	h := newHarness(t)
	h.api.SetNextToken("tok123")
	a := start(h, "/")

	send(a, authform.LoginSubmittedMsg{Username: "alice", Password: "p1"})

	if a.Route().Route.Name != router.RouteHome {
		t.Fatalf("route = %q, want home", a.Route().Route.Name)
	}
	if a.menu == nil || a.menu.Username() != "alice" {
		t.Errorf("expected menu greeting alice")
	}
	if h.session.Token() != "tok123" {
		t.Errorf("token = %q, want tok123", h.session.Token())
	}
	if a.busy {
		t.Error("expected busy to be cleared")
	}
}

func TestApp_LoginFailureStaysOnForm(t *testing.T) {
	h := newHarness(t)
	a := start(h, "/login")

	send(a, authform.LoginSubmittedMsg{Username: "alice", Password: "wrong"})

	if a.Route().Route.Name != router.RouteLogin {
		t.Fatalf("route = %q, want login", a.Route().Route.Name)
	}
	if h.session.Authenticated() {
		t.Error("expected session to stay anonymous")
	}
	if !strings.Contains(a.View(), "Invalid credentials") {
		t.Errorf("expected error in view, got:\n%s", a.View())
	}
}

func TestApp_RegisterNavigatesHome(t *testing.T) {
	h := newHarness(t)
	h.api.SetNextToken("tok-bob")
	a := start(h, "/register")

	send(a, authform.RegisterSubmittedMsg{Form: models.RegisterRequest{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "secret",
		ConfirmPassword: "secret",
	}})

	if a.Route().Route.Name != router.RouteHome {
		t.Fatalf("route = %q, want home", a.Route().Route.Name)
	}
	identity, ok := h.session.Identity()
	if !ok || identity.Username != "bob" {
		t.Errorf("identity = %+v, want bob", identity)
	}
}

func TestApp_SwitchBetweenForms(t *testing.T) {
	h := newHarness(t)
	a := start(h, "/login")

	send(a, authform.SwitchMsg{Path: "/register"})
	if a.Route().Route.Name != router.RouteRegister {
		t.Fatalf("route = %q, want register", a.Route().Route.Name)
	}

	send(a, authform.SwitchMsg{Path: "/login"})
	if a.Route().Route.Name != router.RouteLogin {
		t.Fatalf("route = %q, want login", a.Route().Route.Name)
	}
}

func TestApp_BrowseAndStartExam(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/")

	send(a, menu.SelectedMsg{Action: menu.ActionBrowseExams})
	if a.Route().Route.Name != router.RouteExams {
		t.Fatalf("route = %q, want exams", a.Route().Route.Name)
	}
	if a.examList == nil {
		t.Fatal("expected exam list to be loaded")
	}
	if !strings.Contains(a.View(), "Go Basics") {
		t.Errorf("expected exam in view, got:\n%s", a.View())
	}

	req, ok := h.api.LastRequest("/exams")
	if !ok {
		t.Fatal("expected exams request")
	}
	if req.Authorization != "Bearer tok123" {
		t.Errorf("Authorization = %q, want Bearer tok123", req.Authorization)
	}

	send(a, examlist.SelectedMsg{ID: 1})
	if a.Route().Route.Name != router.RouteExam || a.Route().Param("id") != "1" {
		t.Fatalf("route = %+v, want exam 1", a.Route())
	}
	if a.detail == nil || a.detail.Exam().Title != "Go Basics" {
		t.Fatal("expected exam detail for Go Basics")
	}

	send(a, examdetail.StartMsg{ID: 1})
	if a.detail.Exam().Status != models.ExamInProgress {
		t.Errorf("status = %q, want in_progress", a.detail.Exam().Status)
	}
	if !strings.Contains(a.View(), "Started Go Basics") {
		t.Errorf("expected start notice, got:\n%s", a.View())
	}
}

func TestApp_ExamNotFoundShowsError(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/exam/99")

	if a.Route().Route.Name != router.RouteExam {
		t.Fatalf("route = %q, want exam", a.Route().Route.Name)
	}
	if !strings.Contains(a.View(), "not found") {
		t.Errorf("expected not found error, got:\n%s", a.View())
	}
	if !h.session.Authenticated() {
		t.Error("a 404 must not evict the session")
	}
}

func TestApp_RevokedTokenRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/")

	h.api.Revoke("tok123")
	send(a, menu.SelectedMsg{Action: menu.ActionBrowseExams})

	if a.Route().Route.Name != router.RouteLogin {
		t.Fatalf("route = %q, want login", a.Route().Route.Name)
	}
	if h.session.Authenticated() {
		t.Error("expected session to be evicted")
	}
	if _, ok, _ := h.storage.Get(session.TokenKey); ok {
		t.Error("expected persisted token to be removed")
	}
	if !strings.Contains(a.View(), "session has expired") {
		t.Errorf("expected expiry notice, got:\n%s", a.View())
	}
}

func TestApp_SessionChangeReguardsCurrentRoute(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/exams")

	h.session.Evict()
	send(a, sessionChangedMsg{change: session.Change{State: h.session.State(), Reason: session.ReasonEvicted}})

	if a.Route().Route.Name != router.RouteLogin {
		t.Fatalf("route = %q, want login", a.Route().Route.Name)
	}
	if list, _, ok := h.exams.List(); ok || list != nil {
		t.Error("expected exam cache to be reset")
	}
}

func TestApp_LogoutFromMenu(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/")

	send(a, menu.SelectedMsg{Action: menu.ActionLogout})

	if a.Route().Route.Name != router.RouteLogin {
		t.Fatalf("route = %q, want login", a.Route().Route.Name)
	}
	if h.session.Authenticated() {
		t.Error("expected session to be cleared")
	}
	if !strings.Contains(a.View(), "Logged out.") {
		t.Errorf("expected logout notice, got:\n%s", a.View())
	}
}

func TestApp_RestoredSessionFetchesIdentity(t *testing.T) {
	api := apitest.New()
	t.Cleanup(api.Close)
	api.AddUser(models.Identity{Username: "alice", Email: "alice@example.com"}, "p1")
	api.IssueToken("alice", "tok-restored")

	mem := storage.NewMemory()
	if err := mem.Set(session.TokenKey, "tok-restored"); err != nil {
		t.Fatalf("seeding storage: %v", err)
	}
	h := newHarnessWithStorage(t, api, mem)

	a := start(h, "/")

	if a.Route().Route.Name != router.RouteHome {
		t.Fatalf("route = %q, want home", a.Route().Route.Name)
	}
	if _, ok := h.session.State().(session.Authenticated); !ok {
		t.Fatalf("state = %s, want authenticated", session.Describe(h.session.State()))
	}
	if a.menu == nil || a.menu.Username() != "alice" {
		t.Error("expected menu to greet alice after rehydration")
	}
}

func TestApp_KeyNavigation(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/exam/1")

	send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if a.Route().Route.Name != router.RouteExams {
		t.Fatalf("route = %q, want exams after back", a.Route().Route.Name)
	}

	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.Route().Route.Name != router.RouteHome {
		t.Fatalf("route = %q, want home after back", a.Route().Route.Name)
	}

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected ctrl+c to quit")
	}
}

func TestApp_NotFoundRoute(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/nowhere")

	if !strings.Contains(a.View(), "Page not found") {
		t.Errorf("expected not found view, got:\n%s", a.View())
	}

	send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if a.Route().Route.Name != router.RouteHome {
		t.Errorf("route = %q, want home", a.Route().Route.Name)
	}
}

func TestApp_FrameShowsSessionAndRoute(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/exams")

	view := a.View()
	for _, want := range []string{"Exam Client", "alice", "SIGNED IN", "/exams", "Refresh", "@ 127.0.0.1"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}

	h2 := newHarness(t)
	guest := start(h2, "/login")
	if !strings.Contains(guest.View(), "GUEST") {
		t.Error("expected guest badge for anonymous session")
	}
}

func TestApp_RefreshBypassesDetailCache(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := start(h, "/exams")

	send(a, examlist.SelectedMsg{ID: 1})
	if _, ok := h.api.LastRequest("/exams/1"); ok {
		t.Fatal("expected exam details to come from the list cache")
	}

	send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if _, ok := h.api.LastRequest("/exams/1"); !ok {
		t.Error("expected refresh to fetch exam details")
	}
	if a.detail == nil || a.detail.Exam().Title != "Go Basics" {
		t.Error("expected exam detail after refresh")
	}
}
