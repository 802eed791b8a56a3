package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/tui/handlers"
)

var tabTitles = []string{"Agendar", "Admin"}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content string
	switch m.State {
	case constants.StateBooking:
		content = m.viewBooking()
	case constants.StateAdmin:
		content = m.viewAdmin()
	case constants.StateBookingForm:
		content = m.viewBookingForm()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewFeedback(),
		docStyle.Render(content),
		m.Help.View(m),
	)
}

func (m Model) activeTab() int {
	switch m.State {
	case constants.StateAdmin, constants.StateConfirmDelete:
		return 1
	default:
		return 0
	}
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if i == m.activeTab() {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewFeedback() string {
	msg, ok := m.Feedback.Current()
	if !ok {
		return ""
	}
	toast := successStyle.Render("✓ " + msg.Text)
	if msg.Warning != "" {
		toast = lipgloss.JoinVertical(lipgloss.Left, toast, warningStyle.Render("⚠ "+msg.Warning))
	}
	return toast
}

func (m Model) viewBooking() string {
	rows := []string{
		titleStyle.Render("Agende sua visita"),
		sectionStyle.Render("Selecione o Dia"),
		m.DateStrip.View(),
		sectionStyle.Render("Horários Disponíveis"),
		m.SlotGrid.View(),
		mutedStyle.Render(fmt.Sprintf("%d de %d horários livres", m.SlotGrid.Free(), len(m.Session.Grid()))),
	}
	if m.FormError != "" {
		rows = append(rows, warningStyle.Render(m.FormError))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewBookingForm() string {
	if m.Form == nil {
		return ""
	}
	if m.FormError == "" {
		return m.Form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, dangerStyle.Render(m.FormError), m.Form.View())
}

func (m Model) viewAdmin() string {
	header := titleStyle.Render(fmt.Sprintf("Agendamentos (%d)", m.Appointments.Len()))
	rows := []string{header}
	if m.Notice != "" {
		rows = append(rows, warningStyle.Render(m.Notice))
	}
	rows = append(rows, m.Appointments.View())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewConfirmDelete() string {
	lines := []string{dangerStyle.Render(constants.DeleteConfirmMessage)}
	if apt, ok := m.Store.Get(m.PendingDeleteID); ok {
		lines = append(lines, fmt.Sprintf("%s · %s", handlers.FormatSlot(apt.Date, apt.Time), apt.Client.Name))
	}
	lines = append(lines, "", "[y] Sim   [n] Não")

	return lipgloss.Place(
		m.Width, max(m.Height-chromeHeight, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
}
