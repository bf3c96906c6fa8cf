package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tl/afv/pkg/capture"
	"github.com/tl/afv/pkg/channel"
	"github.com/tl/afv/pkg/output"
)

// MsgStatus carries a channel status check.
type MsgStatus struct {
	Status channel.Status
	Err    error
}

// MsgReport carries a finished capture.
type MsgReport struct {
	Report *output.Report
}

// MsgError indicates the capture could not be analyzed.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.ResultViewport.Width = msg.Width - 4
		m.ResultViewport.Height = msg.Height - 10 // title, status card, footer
		if m.ResultViewport.Height < 3 {
			m.ResultViewport.Height = 3
		}
		return m, nil

	case MsgStatus:
		m.Status = msg.Status
		m.StatusErr = msg.Err
		m.StatusLoaded = true
		return m, nil

	case MsgReport:
		m.Loading = false
		m.Err = nil
		m.Report = msg.Report
		m.Captures++
		m.refreshContent()
		m.ResultViewport.GotoTop()
		return m, nil

	case MsgError:
		m.Loading = false
		m.Err = msg
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if m.Loading {
				return m, nil
			}
			m.Loading = true
			return m, CaptureCmd(m.session)
		case "s":
			return m, StatusCmd(m.session)
		case "v":
			m.Verbose = !m.Verbose
			m.refreshContent()
			return m, nil
		}
	}

	m.ResultViewport, cmd = m.ResultViewport.Update(msg)
	return m, cmd
}

// refreshContent renders the last report into the viewport.
func (m *AppModel) refreshContent() {
	if m.Report == nil {
		return
	}
	var b strings.Builder
	f := output.NewTextFormatter(output.FormatOptions{Language: m.language, Verbose: m.Verbose})
	if err := f.Format(context.Background(), m.Report, &b); err != nil {
		m.Err = err
		return
	}
	m.ResultViewport.SetContent(b.String())
}

// CaptureCmd runs one capture off the UI loop.
func CaptureCmd(session *capture.Session) tea.Cmd {
	return func() tea.Msg {
		result, err := session.Capture(context.Background())
		if err != nil {
			return MsgError(err)
		}
		return MsgReport{Report: output.NewReport(result)}
	}
}

// StatusCmd checks the channel off the UI loop.
func StatusCmd(session *capture.Session) tea.Cmd {
	return func() tea.Msg {
		st, err := session.Status(context.Background())
		return MsgStatus{Status: st, Err: err}
	}
}
