// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Renders exam status and session state as colored inline badges

package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/waynezhang680/examctl/internal/models"
	"github.com/waynezhang680/examctl/internal/session"
)

// Level is the color family of a badge
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	LevelCritical
	LevelInfo
	LevelNeutral
)

// Badge colors
var (
	badgeOKBg      = lipgloss.Color("#10B981")
	badgeWarnBg    = lipgloss.Color("#F59E0B")
	badgeCritBg    = lipgloss.Color("#EF4444")
	badgeInfoBg    = lipgloss.Color("#3B82F6")
	badgeNeutralBg = lipgloss.Color("#6B7280")
	badgeLightFg   = lipgloss.Color("#FFFFFF")
	badgeDarkFg    = lipgloss.Color("#000000")
)

// Badge renders a colored status badge
func Badge(text string, level Level) string {
	bg, fg := badgeNeutralBg, badgeLightFg
	switch level {
	case LevelOK:
		bg = badgeOKBg
	case LevelWarning:
		bg, fg = badgeWarnBg, badgeDarkFg
	case LevelCritical:
		bg = badgeCritBg
	case LevelInfo:
		bg = badgeInfoBg
	}

	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// ExamLevel maps an exam status to a badge level
func ExamLevel(s models.ExamStatus) Level {
	switch s {
	case models.ExamPending:
		return LevelInfo
	case models.ExamInProgress:
		return LevelWarning
	case models.ExamCompleted:
		return LevelOK
	default:
		return LevelNeutral
	}
}

// ExamBadge renders the badge for an exam status
func ExamBadge(s models.ExamStatus) string {
	return Badge(s.Label(), ExamLevel(s))
}

// SessionBadge renders the badge for a session state
func SessionBadge(st session.State) string {
	switch st.(type) {
	case session.Authenticated:
		return Badge("SIGNED IN", LevelOK)
	case session.Restored:
		return Badge("RESTORED", LevelWarning)
	default:
		return Badge("GUEST", LevelNeutral)
	}
}
