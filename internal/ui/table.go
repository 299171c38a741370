package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// SessionSummary is what gets printed when a session ends.
type SessionSummary struct {
	Role     string
	Room     string
	Status   string
	Duration string
}

func SessionSummaryView(summary SessionSummary) string {
	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Role", summary.Role},
		{"Room", summary.Room},
		{"Status", summary.Status},
		{"Duration", summary.Duration},
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	return tbl.Render()
}

func RenderSessionSummary(summary SessionSummary) {
	fmt.Println(SessionSummaryView(summary))
}

// RoomInfo is the box shown to a presenter once the room is live.
type RoomInfo struct {
	RoomCode      string
	ViewerCommand string
}

func NewRoomInfo(roomCode, viewerCommand string) *RoomInfo {
	return &RoomInfo{
		RoomCode:      roomCode,
		ViewerCommand: viewerCommand,
	}
}

func (r *RoomInfo) View() string {
	content := fmt.Sprintf("%s Room Ready!\n\n%s Room Code:  %s\n%s Join with:  %s",
		IconSuccess,
		IconCopy, BoldStyle.Foreground(Primary).Render(r.RoomCode),
		IconLink, MutedStyle.Render(r.ViewerCommand),
	)

	return SuccessBoxStyle.Render(content)
}

func (r *RoomInfo) Render() {
	fmt.Println(r.View())
}
