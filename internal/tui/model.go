package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/feedback"
	"github.com/julianstephens/salonlux/internal/scheduler"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/internal/tui/state"
)

type Model struct {
	state.Model
}

// NewModel opens the booking view on today's date. Toasts stay on screen for
// feedbackDelay.
func NewModel(store *storage.Store, sched *scheduler.Scheduler, feedbackDelay time.Duration) Model {
	return newModel(store, sched, feedback.New(feedbackDelay), time.Now)
}

func newModel(store *storage.Store, sched *scheduler.Scheduler, fb *feedback.Channel, now func() time.Time) Model {
	return Model{Model: state.New(store, sched, fb, now)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	k := m.Keys
	switch m.State {
	case constants.StateBooking:
		return []key.Binding{k.Left, k.Right, k.Enter, k.Tab, k.Quit, k.Help}
	case constants.StateAdmin:
		return []key.Binding{k.Up, k.Down, k.Delete, k.Tab, k.Quit, k.Help}
	case constants.StateConfirmDelete:
		return []key.Binding{k.Confirm, k.Cancel}
	}
	return nil
}

func (m Model) FullHelp() [][]key.Binding {
	k := m.Keys
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Quit, k.Help},
		{k.Left, k.Right, k.Up, k.Down, k.Enter},
		{k.Delete, k.Confirm, k.Cancel},
	}
}
