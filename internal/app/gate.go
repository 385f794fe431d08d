package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/voicememo/internal/config"
	"github.com/jwulff/voicememo/internal/logging"
	"github.com/jwulff/voicememo/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Text of the configuration error screen.
const (
	ConfigErrorTitle = "Configuration Error"
	ConfigErrorText  = "The API key (API_KEY) is not configured. Please ensure the API_KEY environment variable is set."
)

// NewConfigError returns a model that only shows the configuration error. It
// never builds the rest of the application and never re-checks the credential.
func NewConfigError(err error) Model {
	if err == nil {
		err = config.ErrMissingAPIKey
	}
	return Model{
		configErr: err,
		logger:    logging.Discard(),
	}
}

func (m Model) updateConfigError(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case KeyQuit, KeyQuitUpper, KeyCtrlC, KeyEsc, KeyEnter:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) renderConfigError() string {
	wrapWidth := 60
	if m.width > 0 {
		wrapWidth = min(60, max(20, m.width-10))
	}

	lines := []string{ui.ErrorStyle.Render(ConfigErrorTitle), ""}
	lines = append(lines, wrapText(ConfigErrorText, wrapWidth)...)
	if !errors.Is(m.configErr, config.ErrMissingAPIKey) {
		lines = append(lines, "", ui.DimStyle.Render(m.configErr.Error()))
	}
	lines = append(lines, "", ui.DimStyle.Render("Press q to quit."))

	box := ui.ConfigErrorBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
