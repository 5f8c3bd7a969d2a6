// ABOUTME: Login and registration forms as bubbletea models
// ABOUTME: Collect credentials with huh and hand them to the app for submission

package authform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/tui/icons"
	"github.com/waynezhang680/examctl/internal/tui/styles"
	"github.com/waynezhang680/examctl/internal/tui/theme"
)

// LoginSubmittedMsg carries the credentials entered on the login form
type LoginSubmittedMsg struct {
	Username string
	Password string
}

// RegisterSubmittedMsg carries the completed registration form
type RegisterSubmittedMsg struct {
	Form models.RegisterRequest
}

// SwitchMsg asks the app to navigate to the other auth screen
type SwitchMsg struct {
	Path string
}

// CancelledMsg is sent when a form is aborted
type CancelledMsg struct{}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// Login is the sign-in screen
type Login struct {
	username string
	password string
	err      string
	form     *huh.Form
}

// NewLogin creates a login form, prefilled with username when given
func NewLogin(username string) *Login {
	l := &Login{username: username}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&l.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(required("password")),
		).Title(icons.Lock.String()+" Sign in").
			Description("Sign in to see your exams"),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

// SetError shows a submission failure and resets the form for another try
func (l *Login) SetError(err error) {
	l.err = err.Error()
	l.password = ""
	l.form = l.createForm()
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+r":
			return l, func() tea.Msg { return SwitchMsg{Path: "/register"} }
		case "esc":
			return l, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		submitted := LoginSubmittedMsg{Username: strings.TrimSpace(l.username), Password: l.password}
		return l, func() tea.Msg { return submitted }
	}
	return l, cmd
}

// View implements tea.Model
func (l *Login) View() string {
	view := l.form.View()
	if l.err != "" {
		view += "\n" + styles.StatusCritical.Render(icons.Critical.String()+" "+l.err)
	}
	return view
}

// Register is the account creation screen
type Register struct {
	username string
	email    string
	password string
	confirm  string
	err      string
	form     *huh.Form
}

// NewRegister creates an empty registration form
func NewRegister() *Register {
	r := &Register{}
	r.form = r.createForm()
	return r
}

func (r *Register) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&r.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Email").
				Value(&r.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.password).
				Validate(required("password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.confirm).
				Validate(func(s string) error {
					if s != r.password {
						return models.ErrPasswordMismatch
					}
					return nil
				}),
		).Title(icons.User.String()+" Create account").
			Description("All fields are required"),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

// SetError shows a submission failure and resets the password fields
func (r *Register) SetError(err error) {
	r.err = err.Error()
	r.password, r.confirm = "", ""
	r.form = r.createForm()
}

// Init implements tea.Model
func (r *Register) Init() tea.Cmd {
	return r.form.Init()
}

// Update implements tea.Model
func (r *Register) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return r, func() tea.Msg { return SwitchMsg{Path: "/login"} }
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		submitted := RegisterSubmittedMsg{Form: r.request()}
		return r, func() tea.Msg { return submitted }
	}
	return r, cmd
}

func (r *Register) request() models.RegisterRequest {
	return models.RegisterRequest{
		Username:        strings.TrimSpace(r.username),
		Email:           strings.TrimSpace(r.email),
		Password:        r.password,
		ConfirmPassword: r.confirm,
	}
}

// View implements tea.Model
func (r *Register) View() string {
	view := r.form.View()
	if r.err != "" {
		view += "\n" + styles.StatusCritical.Render(icons.Critical.String()+" "+r.err)
	}
	return view
}
