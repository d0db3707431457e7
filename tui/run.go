package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"midiwarp/config"
	"midiwarp/sequencer"
	"midiwarp/theme"
)

// Run starts the interactive UI and blocks until it exits.
func Run(ctx context.Context, engine *sequencer.Engine, cfg *config.Config, th *theme.Theme, source string) error {
	m := NewModel(engine, cfg, th, source)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
