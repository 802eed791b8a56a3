package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/internal/tui/components/appointments"
	"github.com/julianstephens/salonlux/internal/tui/state"
)

// HandleAdminKeys forwards input to the appointment list
func HandleAdminKeys(m *state.Model, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.Appointments, cmd = m.Appointments.Update(msg)
	return cmd
}

// HandleDeleteRequest asks for confirmation before cancelling an appointment
func HandleDeleteRequest(m *state.Model, msg appointments.DeleteRequestMsg) {
	if _, ok := m.Store.Get(msg.ID); !ok {
		return
	}
	m.PendingDeleteID = msg.ID
	m.Notice = ""
	m.State = constants.StateConfirmDelete
}

// HandleConfirmDeleteState resolves the y/n prompt
func HandleConfirmDeleteState(m *state.Model, msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, m.Keys.Confirm):
		id := m.PendingDeleteID
		if err := m.Store.Delete(context.Background(), id); err != nil {
			if storage.IsPersistenceError(err) {
				m.Notice = DeleteWarning
			} else {
				m.Notice = fmt.Sprintf(DeleteFailedFmt, err)
			}
			logger.Warn("Cancellation not persisted", "id", id, "error", err)
		} else {
			logger.Info("Appointment cancelled", "id", id)
		}
		m.PendingDeleteID = ""
		m.SyncAppointments()
		m.SyncGrid()
		m.State = constants.StateAdmin
	case key.Matches(keyMsg, m.Keys.Cancel):
		m.PendingDeleteID = ""
		m.State = constants.StateAdmin
	}
	return nil
}
