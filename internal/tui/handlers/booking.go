package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/booking"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/internal/tui/state"
)

// HandleBookingKeys handles the date strip and slot grid
func HandleBookingKeys(m *state.Model, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.Keys.Left):
		if m.DateStrip.Prev() {
			selectDate(m)
		}
	case key.Matches(msg, m.Keys.Right):
		if m.DateStrip.Next() {
			selectDate(m)
		}
	case key.Matches(msg, m.Keys.Up):
		m.SlotGrid.Move(-1)
	case key.Matches(msg, m.Keys.Down):
		m.SlotGrid.Move(1)
	case key.Matches(msg, m.Keys.Enter):
		return openBookingForm(m)
	}
	return nil
}

func selectDate(m *state.Model) {
	m.FormError = ""
	if err := m.Session.SelectDate(m.DateStrip.SelectedDate()); err != nil {
		logger.Warn("Failed to select date", "date", m.DateStrip.SelectedDate(), "error", err)
	}
	m.SlotGrid.SetSlots(m.Session.Grid())
}

func openBookingForm(m *state.Model) tea.Cmd {
	slot, ok := m.SlotGrid.Selected()
	if !ok || !slot.Available {
		return nil
	}
	if !m.Session.SelectSlot(slot.Time) {
		m.SyncGrid()
		return nil
	}

	m.FormError = ""
	m.ResetBookingForm()
	m.Form = NewBookingForm(m.BookingForm, m.Session.Date(), m.Session.Slot())
	m.State = constants.StateBookingForm
	return m.Form.Init()
}

// HandleBookingFormState drives the booking form until it is submitted or
// cancelled
func HandleBookingFormState(m *state.Model, msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		CancelBooking(m)
		return nil
	}

	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}

	switch m.Form.State {
	case huh.StateCompleted:
		return tea.Batch(cmd, SubmitBooking(m))
	case huh.StateAborted:
		CancelBooking(m)
		return nil
	}
	return cmd
}

// CancelBooking closes the form and drops the selected slot
func CancelBooking(m *state.Model) {
	m.Session.Cancel()
	m.FormError = ""
	m.Form = nil
	m.State = constants.StateBooking
	m.SyncGrid()
}

// SubmitBooking commits the form through the booking session
func SubmitBooking(m *state.Model) tea.Cmd {
	req := booking.Request{
		Client: models.Client{
			Name:    m.BookingForm.Name,
			Phone:   m.BookingForm.Phone,
			Address: m.BookingForm.Address,
		},
		Service: m.BookingForm.Service,
	}

	_, err := m.Session.Submit(context.Background(), req)

	var verr *booking.ValidationError
	var cerr *booking.ConflictError
	switch {
	case err == nil, storage.IsPersistenceError(err):
	case errors.As(err, &verr):
		m.FormError = validationMessage(verr)
		if verr.Field(booking.FieldDate) != "" {
			m.Session.Cancel()
			m.Form = nil
			m.State = constants.StateBooking
			m.SyncGrid()
			return nil
		}
		m.Form = NewBookingForm(m.BookingForm, m.Session.Date(), m.Session.Slot())
		return m.Form.Init()
	case errors.As(err, &cerr):
		// The slot stays selected; the refreshed grid shows it taken.
		m.Form = nil
		m.FormError = cerr.UserMessage()
		m.State = constants.StateBooking
		m.SyncGrid()
		return nil
	default:
		logger.Error("Booking failed", "error", err)
		m.Session.Cancel()
		m.Form = nil
		m.FormError = fmt.Sprintf(BookFailedFmt, err)
		m.State = constants.StateBooking
		m.SyncGrid()
		return nil
	}

	m.Form = nil
	m.FormError = ""
	m.State = constants.StateBooking
	m.SyncGrid()
	m.SyncAppointments()
	return ScheduleFeedbackExpiry(m.Feedback)
}

func validationMessage(verr *booking.ValidationError) string {
	msgs := make([]string, 0, len(verr.Fields))
	for _, msg := range verr.Fields {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, " · ")
}
