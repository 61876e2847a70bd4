package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alfredjeanlab/sprintboard/internal/notify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75"))

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("237"))

	containerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("180"))

	cardStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	focusStyle    = lipgloss.NewStyle().Reverse(true)
	draggingStyle = lipgloss.NewStyle().Faint(true)
	dropStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("114"))

	dimStyle  = lipgloss.NewStyle().Faint(true)
	helpStyle = lipgloss.NewStyle().Faint(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("75")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Faint(true)
)

var noticeStyles = map[notify.Level]lipgloss.Style{
	notify.LevelSuccess:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	notify.LevelNoOp:      lipgloss.NewStyle().Faint(true),
	notify.LevelTransient: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	notify.LevelFailure:   errStyle,
}
