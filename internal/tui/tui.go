package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// Options configures a dashboard program.
type Options struct {
	View   ViewKind
	Cached func(address int64) bool
}

// NewProgram creates a BubbleTea program rendering src on the alternate
// screen with mouse wheel scrolling.
func NewProgram(src Source, o Options, opts ...tea.ProgramOption) *Program {
	model := NewAppModel(src)
	model.Active = o.View
	model.Cached = o.Cached

	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
	allOpts = append(allOpts, opts...)

	return tea.NewProgram(model, allOpts...)
}

// Run blocks until the program exits.
func Run(p *Program) error {
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// WithOutput returns a program option that directs TUI output to the given writer.
func WithOutput(w io.Writer) tea.ProgramOption {
	return tea.WithOutput(w)
}
