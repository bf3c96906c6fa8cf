package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	readyColor   = lipgloss.Color("42")  // green
	pendingColor = lipgloss.Color("214") // amber
	downColor    = lipgloss.Color("196") // red

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(downColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func (m AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("afv - audio_flinger viewer"))
	b.WriteString("\n")
	b.WriteString(m.statusCard())
	b.WriteString("\n")

	switch {
	case m.Loading:
		b.WriteString("\n  Capturing audio_flinger dump... please wait.\n")
	case m.Err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("\n  Error: %v\n", m.Err)))
	case m.Report == nil:
		b.WriteString(dimStyle.Render("\n  Press r to fetch the current audio playback.\n"))
	default:
		b.WriteString(resultStyle.Render(m.ResultViewport.View()))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  capture #%d  %s  %3.f%%",
			m.Captures, m.Report.Metadata.CaptureID, m.ResultViewport.ScrollPercent()*100)))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  r fetch • s status • v verbose • ↑/↓ scroll • q quit"))
	return b.String()
}

// statusCard renders the channel state, colored by readiness.
func (m AppModel) statusCard() string {
	if !m.StatusLoaded {
		return cardStyle.BorderForeground(dimStyle.GetForeground()).Render("checking channel...")
	}

	name := m.session.Channel().Name()
	text := fmt.Sprintf("%s: %s", name, m.Status)
	color := readyColor
	switch {
	case !m.Status.Running:
		color = downColor
	case !m.Status.Authorized:
		color = pendingColor
		text += "\nauthorize the host on the device, then press s"
	}
	if m.StatusErr != nil {
		text += "\n" + m.StatusErr.Error()
	}
	return cardStyle.BorderForeground(color).Render(text)
}
