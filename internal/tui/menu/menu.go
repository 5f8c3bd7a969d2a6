// ABOUTME: Home menu shown to signed-in users
// ABOUTME: Offers browsing exams, logging out or quitting

package menu

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/waynezhang680/examctl/internal/tui/icons"
	"github.com/waynezhang680/examctl/internal/tui/theme"
)

// Action is a home menu choice
type Action int

const (
	ActionBrowseExams Action = iota
	ActionLogout
	ActionQuit
)

// String returns the string representation of an Action
func (a Action) String() string {
	switch a {
	case ActionBrowseExams:
		return "browse"
	case ActionLogout:
		return "logout"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// SelectedMsg is sent when the user picks an action
type SelectedMsg struct {
	Action Action
}

// Menu is the home screen model
type Menu struct {
	username string
	selected Action
	form     *huh.Form
}

// New creates the home menu greeting username. An empty username means the
// identity is still being fetched.
func New(username string) *Menu {
	m := &Menu{username: username, selected: ActionBrowseExams}
	m.form = m.createForm()
	return m
}

func (m *Menu) createForm() *huh.Form {
	greeting := "Welcome back"
	if m.username != "" {
		greeting = fmt.Sprintf("Welcome back, %s", m.username)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("What would you like to do?").
				Options(
					huh.NewOption(icons.List.String()+" Browse exams", ActionBrowseExams),
					huh.NewOption(icons.Logout.String()+" Log out", ActionLogout),
					huh.NewOption(icons.Quit.String()+" Quit", ActionQuit),
				).
				Value(&m.selected),
		).Title(greeting),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

// Username returns the greeted user
func (m *Menu) Username() string {
	return m.username
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
		return m, selected(ActionQuit)
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		action := m.selected
		// Fresh form so the menu is usable again when revisited
		m.form = m.createForm()
		return m, tea.Batch(m.form.Init(), selected(action))
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

func selected(a Action) tea.Cmd {
	return func() tea.Msg { return SelectedMsg{Action: a} }
}
