// Package tui is the interactive snapshot browser behind `afv browse`.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tl/afv/pkg/capture"
	"github.com/tl/afv/pkg/channel"
	"github.com/tl/afv/pkg/output"
)

// AppModel holds the TUI state.
type AppModel struct {
	session  *capture.Session
	language string

	// Channel state
	Status       channel.Status
	StatusErr    error
	StatusLoaded bool

	// Last capture
	Report   *output.Report
	Captures int
	Loading  bool
	Err      error

	// UI State
	Verbose    bool
	WindowSize tea.WindowSizeMsg

	// Components
	ResultViewport viewport.Model
}

// InitialModel returns the initial state.
func InitialModel(session *capture.Session, language string) AppModel {
	if language == "" {
		language = output.DefaultLanguage
	}
	return AppModel{
		session:        session,
		language:       language,
		ResultViewport: viewport.New(80, 20),
	}
}

// Init checks the channel status on start.
func (m AppModel) Init() tea.Cmd {
	return StatusCmd(m.session)
}
