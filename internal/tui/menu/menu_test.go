// ABOUTME: Tests for the home menu
// ABOUTME: Verifies greeting, selection messages and quit shortcut

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewGreetsUser(t *testing.T) {
	m := New("alice")

	if m.Username() != "alice" {
		t.Errorf("expected alice, got %s", m.Username())
	}
	if !strings.Contains(m.View(), "Welcome back, alice") {
		t.Errorf("expected greeting in view, got: %s", m.View())
	}
}

func TestNewWithoutIdentity(t *testing.T) {
	view := New("").View()
	if !strings.Contains(view, "Welcome back") {
		t.Errorf("expected generic greeting, got: %s", view)
	}
}

func TestQuitShortcut(t *testing.T) {
	m := New("alice")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok || msg.Action != ActionQuit {
		t.Errorf("expected quit selection, got %#v", msg)
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionBrowseExams, "browse"},
		{ActionLogout, "logout"},
		{ActionQuit, "quit"},
		{Action(42), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.action.String(); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}
