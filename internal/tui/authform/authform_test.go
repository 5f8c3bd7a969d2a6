// ABOUTME: Tests for the login and registration forms
// ABOUTME: Verifies submission messages, screen switching and error display

package authform

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type tickMsg struct{}

func TestLogin_SubmitsTrimmedCredentials(t *testing.T) {
	l := NewLogin("")
	l.username = "  alice "
	l.password = "p1"
	l.form.State = huh.StateCompleted

	_, cmd := l.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(LoginSubmittedMsg)
	if !ok {
		t.Fatalf("expected LoginSubmittedMsg, got %T", cmd())
	}
	if msg.Username != "alice" || msg.Password != "p1" {
		t.Errorf("unexpected credentials %+v", msg)
	}
}

func TestLogin_SwitchToRegister(t *testing.T) {
	l := NewLogin("")

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	msg, ok := cmd().(SwitchMsg)
	if !ok || msg.Path != "/register" {
		t.Errorf("expected switch to /register, got %#v", msg)
	}
}

func TestLogin_EscCancels(t *testing.T) {
	l := NewLogin("")

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Error("expected CancelledMsg")
	}
}

func TestLogin_SetErrorKeepsUsername(t *testing.T) {
	l := NewLogin("alice")
	l.password = "wrong"

	l.SetError(errors.New("authentication failed: Invalid credentials"))

	if l.username != "alice" {
		t.Errorf("expected username kept, got %q", l.username)
	}
	if l.password != "" {
		t.Error("expected password cleared")
	}
	if l.form.State != huh.StateNormal {
		t.Error("expected a fresh form")
	}
	if !strings.Contains(l.View(), "Invalid credentials") {
		t.Errorf("expected error in view, got: %s", l.View())
	}
}

func TestRegister_SubmitsForm(t *testing.T) {
	r := NewRegister()
	r.username, r.email, r.password, r.confirm = "bob ", " bob@example.com", "pw", "pw"
	r.form.State = huh.StateCompleted

	_, cmd := r.Update(tickMsg{})
	msg, ok := cmd().(RegisterSubmittedMsg)
	if !ok {
		t.Fatal("expected RegisterSubmittedMsg")
	}
	if msg.Form.Username != "bob" || msg.Form.Email != "bob@example.com" || msg.Form.ConfirmPassword != "pw" {
		t.Errorf("unexpected form %+v", msg.Form)
	}
}

func TestRegister_EscReturnsToLogin(t *testing.T) {
	r := NewRegister()

	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	msg, ok := cmd().(SwitchMsg)
	if !ok || msg.Path != "/login" {
		t.Errorf("expected switch to /login, got %#v", msg)
	}
}

func TestRegister_SetError(t *testing.T) {
	r := NewRegister()
	r.password, r.confirm = "a", "a"

	r.SetError(errors.New("User already exists"))

	if r.password != "" || r.confirm != "" {
		t.Error("expected passwords cleared")
	}
	if !strings.Contains(r.View(), "User already exists") {
		t.Error("expected error in view")
	}
}

func TestRequired(t *testing.T) {
	validate := required("email")
	if err := validate("  "); err == nil || err.Error() != "email is required" {
		t.Errorf("unexpected error %v", err)
	}
	if err := validate("x"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
