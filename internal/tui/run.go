package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stegsift/stegsift/internal/engine"
)

func Run(results []*engine.Result, rescanFunc func() ([]*engine.Result, error)) error {
	m := NewModel(results, rescanFunc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
