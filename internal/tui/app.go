// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Keys screens by route and runs the route guard on every navigation

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/waynezhang680/examctl/internal/client"
	"github.com/waynezhang680/examctl/internal/exams"
	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/router"
	"github.com/waynezhang680/examctl/internal/session"
	"github.com/waynezhang680/examctl/internal/tui/authform"
	"github.com/waynezhang680/examctl/internal/tui/examdetail"
	"github.com/waynezhang680/examctl/internal/tui/examlist"
	"github.com/waynezhang680/examctl/internal/tui/icons"
	"github.com/waynezhang680/examctl/internal/tui/menu"
	"github.com/waynezhang680/examctl/internal/tui/styles"
	"github.com/waynezhang680/examctl/internal/tui/widgets"
)

// Layout constants
const (
	minTerminalWidth = 80
	frameHeight      = 4 // header, footer and the newlines around content
)

const expiredNotice = "Your session has expired. Please sign in again."

// Deps are the shared components the TUI runs on
type Deps struct {
	Session  *session.Store
	Exams    *exams.Store
	Router   *router.Router
	APIURL   string
	PageSize int
	Logger   *slog.Logger
}

// sessionChangedMsg delivers a session store notification into the program
type sessionChangedMsg struct {
	change session.Change
}

// authResultMsg is sent when a login or registration attempt finishes
type authResultMsg struct {
	route string
	err   error
}

// examsLoadedMsg is sent when a page of exams is fetched
type examsLoadedMsg struct {
	list *models.ExamList
	page int
	err  error
}

// examLoadedMsg is sent when exam details are fetched
type examLoadedMsg struct {
	exam *models.Exam
	err  error
}

// examStartedMsg is sent when an exam start request finishes
type examStartedMsg struct {
	exam *models.Exam
	err  error
}

// App is the root model for the TUI
type App struct {
	ctx      context.Context
	session  *session.Store
	exams    *exams.Store
	router   *router.Router
	logger   *slog.Logger
	apiURL   string
	pageSize int

	route  router.Match
	page   int
	width  int
	height int
	err    error
	notice string
	busy   bool

	spinner     spinner.Model
	pendingInit tea.Cmd

	// Screens, keyed by the current route
	menu     *menu.Menu
	login    *authform.Login
	register *authform.Register
	examList *examlist.ExamList
	detail   *examdetail.Detail
}

// New creates the TUI application and navigates to startRoute
func New(ctx context.Context, deps Deps, startRoute string) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := deps.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	r := deps.Router
	if r == nil {
		r = router.New()
	}

	a := &App{
		ctx:      ctx,
		session:  deps.Session,
		exams:    deps.Exams,
		router:   r,
		logger:   logger,
		apiURL:   deps.APIURL,
		pageSize: pageSize,
		page:     1,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}
	a.pendingInit = a.navigate(startRoute)
	return a
}

// Route returns the route currently shown
func (a *App) Route() router.Match {
	return a.route
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmd := a.pendingInit
	a.pendingInit = nil
	return cmd
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.examList != nil {
			a.examList.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.detail != nil {
			a.detail.SetWidth(a.contentWidth())
		}
		return a, a.forward(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.busy {
			return a, nil
		}
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case sessionChangedMsg:
		a.logger.Debug("Session changed", "reason", msg.change.Reason.String(), "state", session.Describe(msg.change.State))
		if msg.change.Reason != session.ReasonEvicted {
			return a, a.reguard()
		}
		a.exams.Reset()
		cmd := a.reguard()
		a.notice = expiredNotice
		return a, cmd

	case menu.SelectedMsg:
		return a.handleMenu(msg)

	case authform.LoginSubmittedMsg:
		a.busy = true
		a.notice = ""
		return a, tea.Batch(a.loginCmd(msg), a.spinner.Tick)

	case authform.RegisterSubmittedMsg:
		a.busy = true
		a.notice = ""
		return a, tea.Batch(a.registerCmd(msg), a.spinner.Tick)

	case authform.SwitchMsg:
		return a, a.navigate(msg.Path)

	case authform.CancelledMsg:
		return a, tea.Quit

	case authResultMsg:
		return a.handleAuthResult(msg)

	case examlist.SelectedMsg:
		return a, a.navigate("/exam/" + strconv.FormatInt(msg.ID, 10))

	case examlist.PageMsg:
		a.page = msg.Page
		return a, a.fetch(a.loadExamsCmd(a.page))

	case examdetail.StartMsg:
		return a, a.fetch(a.startExamCmd(msg.ID))

	case examsLoadedMsg:
		return a.handleExamsLoaded(msg)

	case examLoadedMsg:
		return a.handleExamLoaded(msg)

	case examStartedMsg:
		return a.handleExamStarted(msg)
	}

	// Forms need their internal messages (cursor blink, focus)
	return a, a.forward(msg)
}

// navigate runs the guard for path and shows the screen it lands on
func (a *App) navigate(path string) tea.Cmd {
	decision, m := a.router.Destination(a.session.Authenticated(), path)
	if !decision.Proceed {
		a.logger.Debug("Navigation redirected", "from", path, "to", decision.Target)
	}

	a.route = m
	a.err = nil
	a.notice = ""
	a.busy = false
	a.menu, a.login, a.register, a.examList, a.detail = nil, nil, nil, nil, nil

	switch m.Route.Name {
	case router.RouteHome:
		username := ""
		if identity, ok := a.session.Identity(); ok {
			username = identity.Username
		}
		a.menu = menu.New(username)
		if username == "" {
			return tea.Batch(a.menu.Init(), a.rehydrateCmd())
		}
		return a.menu.Init()

	case router.RouteLogin:
		a.login = authform.NewLogin("")
		return a.login.Init()

	case router.RouteRegister:
		a.register = authform.NewRegister()
		return a.register.Init()

	case router.RouteExams:
		return a.fetch(a.loadExamsCmd(a.page))

	case router.RouteExam:
		id, err := strconv.ParseInt(m.Param("id"), 10, 64)
		if err != nil {
			a.err = fmt.Errorf("invalid exam id %q", m.Param("id"))
			return nil
		}
		return a.fetch(a.loadExamCmd(id))
	}
	return nil
}

// reguard re-evaluates the current route after the session changed
func (a *App) reguard() tea.Cmd {
	decision, _ := a.router.Navigate(a.session.Authenticated(), a.route.Path)
	if decision.Proceed {
		if a.route.Route.Name == router.RouteHome && a.menu != nil && a.menu.Username() == "" {
			if identity, ok := a.session.Identity(); ok {
				a.menu = menu.New(identity.Username)
				return a.menu.Init()
			}
		}
		return nil
	}
	return a.navigate(a.route.Path)
}

// handleUnauthorized reacts to a 401 result. The session is already evicted,
// so navigating the current route again lets the guard redirect to login.
func (a *App) handleUnauthorized(err error) (bool, tea.Cmd) {
	if !client.IsUnauthorized(err) {
		return false, nil
	}
	a.exams.Reset()
	cmd := a.navigate(a.route.Path)
	a.notice = expiredNotice
	return true, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.route.Route.Name {
	case router.RouteLogin, router.RouteRegister, router.RouteHome:
		return a, a.forward(msg)

	case router.RouteExams:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "b", "esc":
			return a, a.navigate(router.HomePath)
		case "r":
			return a, a.fetch(a.loadExamsCmd(a.page))
		}

	case router.RouteExam:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "b", "esc":
			return a, a.navigate("/exams")
		case "r":
			if a.detail != nil {
				id := a.detail.Exam().ID
				a.exams.Invalidate(id)
				return a, a.fetch(a.loadExamCmd(id))
			}
		}

	default:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "b", "esc", "enter":
			return a, a.navigate(router.HomePath)
		}
	}
	return a, a.forward(msg)
}

// forward passes msg to the active screen
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.menu != nil:
		_, cmd = a.menu.Update(msg)
	case a.login != nil:
		if !a.busy {
			_, cmd = a.login.Update(msg)
		}
	case a.register != nil:
		if !a.busy {
			_, cmd = a.register.Update(msg)
		}
	case a.examList != nil:
		_, cmd = a.examList.Update(msg)
	case a.detail != nil:
		_, cmd = a.detail.Update(msg)
	}
	return cmd
}

func (a *App) handleMenu(msg menu.SelectedMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case menu.ActionBrowseExams:
		return a, a.navigate("/exams")
	case menu.ActionLogout:
		a.session.Logout()
		a.exams.Reset()
		a.page = 1
		cmd := a.reguard()
		a.notice = "Logged out."
		return a, cmd
	default:
		return a, tea.Quit
	}
}

func (a *App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if msg.err != nil {
		a.logger.Debug("Authentication failed", "route", msg.route, "error", msg.err)
		switch {
		case msg.route == router.LoginPath && a.login != nil:
			a.login.SetError(msg.err)
			return a, a.login.Init()
		case a.register != nil:
			a.register.SetError(msg.err)
			return a, a.register.Init()
		}
		return a, nil
	}
	return a, a.reguard()
}

func (a *App) handleExamsLoaded(msg examsLoadedMsg) (tea.Model, tea.Cmd) {
	if a.route.Route.Name != router.RouteExams {
		return a, nil
	}
	a.busy = false
	if handled, cmd := a.handleUnauthorized(msg.err); handled {
		return a, cmd
	}
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}
	a.page = msg.page
	a.examList = examlist.New(msg.list, msg.page, a.pageSize, a.contentWidth(), a.contentHeight())
	return a, nil
}

func (a *App) handleExamLoaded(msg examLoadedMsg) (tea.Model, tea.Cmd) {
	if a.route.Route.Name != router.RouteExam {
		return a, nil
	}
	a.busy = false
	if handled, cmd := a.handleUnauthorized(msg.err); handled {
		return a, cmd
	}
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}
	a.detail = examdetail.New(*msg.exam, a.contentWidth())
	return a, nil
}

func (a *App) handleExamStarted(msg examStartedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if handled, cmd := a.handleUnauthorized(msg.err); handled {
		return a, cmd
	}
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}
	a.notice = fmt.Sprintf("Started %s. Good luck!", msg.exam.Title)
	if a.route.Route.Name == router.RouteExam {
		a.detail = examdetail.New(*msg.exam, a.contentWidth())
	}
	return a, nil
}

// fetch marks the app busy while cmd runs
func (a *App) fetch(cmd tea.Cmd) tea.Cmd {
	a.busy = true
	a.err = nil
	return tea.Batch(cmd, a.spinner.Tick)
}

func (a *App) loginCmd(msg authform.LoginSubmittedMsg) tea.Cmd {
	return func() tea.Msg {
		err := a.session.Login(a.ctx, msg.Username, msg.Password)
		return authResultMsg{route: router.LoginPath, err: err}
	}
}

func (a *App) registerCmd(msg authform.RegisterSubmittedMsg) tea.Cmd {
	return func() tea.Msg {
		err := a.session.Register(a.ctx, msg.Form)
		return authResultMsg{route: "/register", err: err}
	}
}

// rehydrateCmd fetches the identity for a restored session. Success arrives
// as a session change; failures are only logged.
func (a *App) rehydrateCmd() tea.Cmd {
	if _, ok := a.session.State().(session.Restored); !ok {
		return nil
	}
	return func() tea.Msg {
		if err := a.session.Rehydrate(a.ctx); err != nil {
			a.logger.Warn("Could not fetch identity", "error", err)
		}
		return sessionChangedMsg{change: session.Change{State: a.session.State(), Reason: session.ReasonRehydrated}}
	}
}

func (a *App) loadExamsCmd(page int) tea.Cmd {
	limit := a.pageSize
	return func() tea.Msg {
		list, err := a.exams.FetchExams(a.ctx, page, limit)
		return examsLoadedMsg{list: list, page: page, err: err}
	}
}

func (a *App) loadExamCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		exam, err := a.exams.ExamDetails(a.ctx, id)
		return examLoadedMsg{exam: exam, err: err}
	}
}

func (a *App) startExamCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		exam, err := a.exams.StartExam(a.ctx, id)
		return examStartedMsg{exam: exam, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var sb strings.Builder

	if a.notice != "" {
		sb.WriteString(styles.StatusWarning.Render(icons.Info.String()+" "+a.notice) + "\n\n")
	}

	switch {
	case a.busy:
		sb.WriteString(a.spinner.View() + " Loading...")
	case a.err != nil:
		sb.WriteString(styles.StatusCritical.Render("Error: " + a.err.Error()))
	default:
		sb.WriteString(a.viewScreen())
	}

	return a.wrapWithFrame(sb.String())
}

func (a *App) viewScreen() string {
	switch {
	case a.menu != nil:
		return a.menu.View()
	case a.login != nil:
		return a.login.View()
	case a.register != nil:
		return a.register.View()
	case a.examList != nil:
		return a.examList.View()
	case a.detail != nil:
		return a.detail.View()
	case a.route.Route.Name == router.RouteNotFound:
		return styles.Title.Render("Page not found") + "\n" +
			styles.Subtitle.Render(fmt.Sprintf("Nothing lives at %s.", a.route.Path))
	}
	return ""
}

func (a *App) frameWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth
	}
	return a.width
}

func (a *App) contentWidth() int {
	return a.frameWidth() - 4
}

func (a *App) contentHeight() int {
	return a.height - frameHeight
}

// renderHeader creates the header bar with branding and session state
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Exam Client"))

	right := widgets.SessionBadge(a.session.State())
	if identity, ok := a.session.Identity(); ok {
		right = contextStyle.Render(icons.User.String()+" "+identity.Username) + " " + right
	}
	right += " "

	fill := width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if fill < 0 {
		fill = 0
	}

	return borderStyle.Render("╭─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts for the current route
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var shortcuts []string
	switch a.route.Route.Name {
	case router.RouteHome:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case router.RouteLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "ctrl+r Register", "Esc Quit"}
	case router.RouteRegister:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Back"}
	case router.RouteExams:
		shortcuts = []string{"↑↓ Navigate", "Enter Open", "n/p Page", "r Refresh", "b Back", "q Quit"}
	case router.RouteExam:
		shortcuts = []string{"s Start", "r Refresh", "b Back", "q Quit"}
	default:
		shortcuts = []string{"b Home", "q Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}
	left := " " + strings.Join(styled, "  ") + " "
	right := labelStyle.Render(a.route.Path)
	if host := apiHost(a.apiURL); host != "" {
		right += labelStyle.Render(" @ " + host)
	}
	right += " "

	fill := width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if fill < 0 {
		fill = 0
	}

	return borderStyle.Render("╰─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╯")
}

// apiHost shortens the API URL for the footer
func apiHost(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return apiURL
	}
	return u.Host
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI at startRoute and delivers session changes into it
func Run(ctx context.Context, deps Deps, startRoute string) error {
	app := New(ctx, deps, startRoute)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Observers may fire from inside Update, so never block on Send
	unsubscribe := deps.Session.Subscribe(func(c session.Change) {
		go p.Send(sessionChangedMsg{change: c})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
