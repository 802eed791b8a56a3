package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/tui/components/appointments"
	"github.com/julianstephens/salonlux/internal/tui/handlers"
)

// header, tabs and help rows around the admin list
const chromeHeight = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.Appointments.SetSize(msg.Width-h, max(msg.Height-v-chromeHeight, 0))
	case handlers.FeedbackExpiredMsg:
		handlers.HandleFeedbackExpired(&m.Model, msg)
		return m, nil
	case appointments.DeleteRequestMsg:
		handlers.HandleDeleteRequest(&m.Model, msg)
		return m, nil
	}

	switch m.State {
	case constants.StateBookingForm:
		return m, handlers.HandleBookingFormState(&m.Model, msg)
	case constants.StateConfirmDelete:
		return m, handlers.HandleConfirmDeleteState(&m.Model, msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.State == constants.StateAdmin {
			return m, handlers.HandleAdminKeys(&m.Model, msg)
		}
		return m, nil
	}

	if handled, cmd := handlers.HandleGlobalKeys(&m.Model, keyMsg); handled {
		return m, cmd
	}

	switch m.State {
	case constants.StateBooking:
		return m, handlers.HandleBookingKeys(&m.Model, keyMsg)
	case constants.StateAdmin:
		return m, handlers.HandleAdminKeys(&m.Model, keyMsg)
	}
	return m, nil
}
