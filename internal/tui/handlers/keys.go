package handlers

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/tui/state"
)

// HandleGlobalKeys handles keys shared by the booking and admin views
func HandleGlobalKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.Keys.Tab), key.Matches(msg, m.Keys.ShiftTab):
		switch m.State {
		case constants.StateBooking:
			m.State = constants.StateAdmin
			m.SyncAppointments()
		case constants.StateAdmin:
			m.State = constants.StateBooking
			m.SyncGrid()
		}
		m.FormError = ""
		m.Notice = ""
		return true, nil
	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return true, nil
	}
	return false, nil
}
