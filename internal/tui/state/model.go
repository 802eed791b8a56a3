package state

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/salonlux/internal/booking"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/feedback"
	"github.com/julianstephens/salonlux/internal/scheduler"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/internal/tui/components/appointments"
	"github.com/julianstephens/salonlux/internal/tui/components/datestrip"
	"github.com/julianstephens/salonlux/internal/tui/components/slotgrid"
)

// BookingFormModel is bound to the booking form fields
type BookingFormModel struct {
	Name    string
	Phone   string
	Address string
	Service string
}

// Model represents the shared state for the TUI
type Model struct {
	Store           *storage.Store
	Scheduler       *scheduler.Scheduler
	Session         *booking.Session
	Feedback        *feedback.Channel
	State           constants.SessionState
	Keys            KeyMap
	Help            help.Model
	DateStrip       datestrip.Model
	SlotGrid        slotgrid.Model
	Appointments    appointments.Model
	Form            *huh.Form
	BookingForm     *BookingFormModel
	Quitting        bool
	Width           int
	Height          int
	PendingDeleteID string
	FormError       string // Error message shown next to the form or grid
	Notice          string // Warning shown in the admin view
}

// New creates a new state Model on today's date
func New(store *storage.Store, sched *scheduler.Scheduler, fb *feedback.Channel, now func() time.Time) Model {
	session := booking.NewSession(store, sched, booking.WithClock(now), booking.WithFeedback(fb))

	return Model{
		Store:        store,
		Scheduler:    sched,
		Session:      session,
		Feedback:     fb,
		State:        constants.StateBooking,
		Keys:         DefaultKeyMap(),
		Help:         help.New(),
		DateStrip:    datestrip.New(session.DateOptions()),
		SlotGrid:     slotgrid.New(session.Grid()),
		Appointments: appointments.New(store.All(), 0, 0),
	}
}

// SyncGrid recomputes availability for the session's date.
func (m *Model) SyncGrid() {
	m.SlotGrid.SetSlots(m.Session.Refresh())
}

// SyncAppointments reloads the admin list from the store.
func (m *Model) SyncAppointments() {
	m.Appointments.SetAppointments(m.Store.All())
}

// ResetBookingForm binds a fresh form model with the default service.
func (m *Model) ResetBookingForm() {
	m.BookingForm = &BookingFormModel{Service: constants.DefaultService()}
}
