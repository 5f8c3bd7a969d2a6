// ABOUTME: Exam list screen backed by a bubbles table
// ABOUTME: Emits selection and paging messages for the app to act on

package examlist

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/tui/icons"
	"github.com/waynezhang680/examctl/internal/tui/styles"
)

// SelectedMsg is sent when an exam is chosen
type SelectedMsg struct {
	ID int64
}

// PageMsg asks the app to load another page
type PageMsg struct {
	Page int
}

// Column widths, title takes the remainder
const (
	idWidth       = 6
	statusWidth   = 12
	durationWidth = 10
	questionWidth = 10
	minTitleWidth = 16
	tableChrome   = 4
)

// ExamList is the exam list screen
type ExamList struct {
	exams []models.Exam
	page  int
	limit int
	total int
	table table.Model
}

// New creates the list for one page of exams
func New(list *models.ExamList, page, limit, width, height int) *ExamList {
	l := &ExamList{page: page, limit: limit}
	if list != nil {
		l.exams = list.Exams
		l.total = list.Total
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)

	l.table = table.New(
		table.WithColumns(columns(width)),
		table.WithRows(l.rows()),
		table.WithFocused(true),
		table.WithHeight(tableHeight(height)),
		table.WithStyles(s),
	)
	return l
}

func columns(width int) []table.Column {
	title := width - idWidth - statusWidth - durationWidth - questionWidth - tableChrome*2
	if title < minTitleWidth {
		title = minTitleWidth
	}
	return []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Title", Width: title},
		{Title: "Status", Width: statusWidth},
		{Title: "Duration", Width: durationWidth},
		{Title: "Questions", Width: questionWidth},
	}
}

func tableHeight(height int) int {
	// Header, pager line and help line
	h := height - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (l *ExamList) rows() []table.Row {
	rows := make([]table.Row, 0, len(l.exams))
	for _, e := range l.exams {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			e.Status.Label(),
			fmt.Sprintf("%d min", e.Duration),
			strconv.Itoa(e.TotalQuestions),
		})
	}
	return rows
}

// SetSize resizes the table
func (l *ExamList) SetSize(width, height int) {
	l.table.SetColumns(columns(width))
	l.table.SetHeight(tableHeight(height))
}

// Page returns the page shown
func (l *ExamList) Page() int {
	return l.page
}

// Pages returns the number of pages available
func (l *ExamList) Pages() int {
	if l.limit < 1 {
		return 1
	}
	pages := (l.total + l.limit - 1) / l.limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Selected returns the exam under the cursor
func (l *ExamList) Selected() (models.Exam, bool) {
	i := l.table.Cursor()
	if i < 0 || i >= len(l.exams) {
		return models.Exam{}, false
	}
	return l.exams[i], true
}

// Init implements tea.Model
func (l *ExamList) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (l *ExamList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if exam, ok := l.Selected(); ok {
				return l, func() tea.Msg { return SelectedMsg{ID: exam.ID} }
			}
			return l, nil
		case "n", "right":
			if l.page < l.Pages() {
				next := l.page + 1
				return l, func() tea.Msg { return PageMsg{Page: next} }
			}
			return l, nil
		case "p", "left":
			if l.page > 1 {
				prev := l.page - 1
				return l, func() tea.Msg { return PageMsg{Page: prev} }
			}
			return l, nil
		}
	}

	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return l, cmd
}

// View implements tea.Model
func (l *ExamList) View() string {
	title := styles.Title.Render(icons.List.String() + " Exams")
	if len(l.exams) == 0 {
		return title + "\n" + styles.Subtitle.Render("No exams available.")
	}

	pager := styles.Subtitle.Render(fmt.Sprintf("Page %d of %d  %s %d exams", l.page, l.Pages(), icons.Exam.String(), l.total))
	return title + "\n" + l.table.View() + "\n" + pager
}
