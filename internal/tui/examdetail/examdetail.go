// ABOUTME: Exam detail screen with the option to start the exam
// ABOUTME: Renders metadata and emits a start request for pending exams

package examdetail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/tui/icons"
	"github.com/waynezhang680/examctl/internal/tui/styles"
	"github.com/waynezhang680/examctl/internal/tui/widgets"
)

// StartMsg asks the app to start the exam
type StartMsg struct {
	ID int64
}

// Detail is the exam detail screen
type Detail struct {
	exam  models.Exam
	width int
}

// New creates the detail screen for exam
func New(exam models.Exam, width int) *Detail {
	return &Detail{exam: exam, width: width}
}

// Exam returns the exam shown
func (d *Detail) Exam() models.Exam {
	return d.exam
}

// SetWidth sets the rendering width
func (d *Detail) SetWidth(width int) {
	d.width = width
}

// CanStart reports whether the exam can still be started
func (d *Detail) CanStart() bool {
	return d.exam.Status == models.ExamPending
}

// Init implements tea.Model
func (d *Detail) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (d *Detail) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "s" && d.CanStart() {
		id := d.exam.ID
		return d, func() tea.Msg { return StartMsg{ID: id} }
	}
	return d, nil
}

// View implements tea.Model
func (d *Detail) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s %s", icons.Exam.String(), d.exam.Title)))
	sb.WriteString("\n")
	sb.WriteString(row("Status", widgets.ExamBadge(d.exam.Status)))
	sb.WriteString(row("Duration", fmt.Sprintf("%s %d min", icons.Clock.String(), d.exam.Duration)))
	sb.WriteString(row("Questions", fmt.Sprintf("%s %d", icons.Questions.String(), d.exam.TotalQuestions)))

	if d.exam.Description != "" {
		width := d.width - 8
		if width < 20 {
			width = 20
		}
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Width(width).Render(d.exam.Description))
		sb.WriteString("\n")
	}

	switch d.exam.Status {
	case models.ExamPending:
		sb.WriteString(styles.Help.Render(icons.Play.String() + " Press s to start this exam"))
	case models.ExamInProgress:
		sb.WriteString(styles.StatusWarning.Render(icons.Clock.String() + " Exam in progress"))
	case models.ExamCompleted:
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " Exam completed"))
	}

	return styles.ActivePanel.Render(sb.String())
}

func row(label, value string) string {
	return styles.LabelStyle.Render(label) + value + "\n"
}
