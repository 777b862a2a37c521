package tui

import (
	coreapp "typeinspector/internal/core/app"
	"typeinspector/internal/core/inspector"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens path in a terminal editor and blocks until the user quits.
func Run(a *coreapp.App, path string) error {
	id, err := a.OpenFile(path)
	if err != nil {
		return err
	}
	editor, err := a.Workspace.OpenEditor(id)
	if err != nil {
		return err
	}
	if err := a.Workspace.Select(editor); err != nil {
		return err
	}

	dispatcher := NewDispatcher()
	defer dispatcher.Close()

	factory := inspector.NewFactory(a.Host(dispatcher))
	widget := factory.CreateWidget(a.Session)
	defer factory.DisposeWidget(widget)

	p := tea.NewProgram(NewModel(a.Workspace, editor, widget, &StatusBar{}), tea.WithAltScreen())
	dispatcher.Attach(p)

	_, err = p.Run()
	return err
}
