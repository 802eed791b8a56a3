// Package booking implements the slot selection and commit protocol shared by
// the TUI and the non-interactive book command.
package booking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/feedback"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/scheduler"
	"github.com/julianstephens/salonlux/internal/storage"
)

// State is the position of a Session in the commit protocol.
type State int

const (
	NoSlotSelected State = iota
	SlotSelected
	Committed
)

func (s State) String() string {
	switch s {
	case NoSlotSelected:
		return "no-slot-selected"
	case SlotSelected:
		return "slot-selected"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// Store is the part of storage.Store a Session needs.
type Store interface {
	All() []models.Appointment
	Append(ctx context.Context, apt models.Appointment) error
}

// Request is the form data submitted for the selected slot.
type Request struct {
	Client  models.Client
	Service string
}

// Session tracks one user's progress from picking a date to a committed
// appointment. It is not safe for concurrent use.
type Session struct {
	store    Store
	sched    *scheduler.Scheduler
	feedback *feedback.Channel
	now      func() time.Time
	newID    func() string

	state State
	date  string
	slot  string
	grid  []models.TimeSlot
}

type Option func(*Session)

// WithClock replaces time.Now for the booking window and createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// WithFeedback posts the success acknowledgment to ch.
func WithFeedback(ch *feedback.Channel) Option {
	return func(s *Session) { s.feedback = ch }
}

// NewSession starts on today's date with no slot selected.
func NewSession(store Store, sched *scheduler.Scheduler, opts ...Option) *Session {
	s := &Session{
		store: store,
		sched: sched,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.date = s.now().Format(constants.DateFormat)
	s.Refresh()
	return s
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Date() string {
	return s.date
}

// Slot returns the selected slot label, or "" when none is selected.
func (s *Session) Slot() string {
	return s.slot
}

// Grid returns the availability grid computed for the current date.
func (s *Session) Grid() []models.TimeSlot {
	out := make([]models.TimeSlot, len(s.grid))
	copy(out, s.grid)
	return out
}

// DateOptions returns the days open for new bookings.
func (s *Session) DateOptions() []time.Time {
	return s.sched.DateOptions(s.now())
}

// Refresh recomputes the grid from the store. Call it after any store change
// made outside the session.
func (s *Session) Refresh() []models.TimeSlot {
	s.grid = s.sched.Availability(s.date, s.store.All())
	return s.Grid()
}

// SelectDate switches the grid to date and drops any selected slot.
func (s *Session) SelectDate(date string) error {
	if _, err := models.ParseDate(date); err != nil {
		return err
	}
	if s.state == SlotSelected {
		logger.Debug("Date changed, clearing selected slot", "from", s.date, "to", date, "slot", s.slot)
	}
	s.date = date
	s.reset()
	s.Refresh()
	return nil
}

// SelectSlot selects label if the latest grid marks it available. Unknown or
// occupied labels leave the session unchanged and return false.
func (s *Session) SelectSlot(label string) bool {
	for _, ts := range s.grid {
		if ts.Time != label {
			continue
		}
		if !ts.Available {
			return false
		}
		s.slot = label
		s.state = SlotSelected
		logger.Debug("Slot selected", "date", s.date, "time", label)
		return true
	}
	return false
}

// Cancel drops the selection without side effects.
func (s *Session) Cancel() {
	if s.state == SlotSelected {
		logger.Debug("Selection cancelled", "date", s.date, "time", s.slot)
	}
	s.reset()
}

func (s *Session) reset() {
	s.state = NoSlotSelected
	s.slot = ""
}

// Submit validates req and books the selected slot.
//
// A *ValidationError or *ConflictError leaves the slot selected so the user
// can correct the form or pick another slot. When the store kept the booking
// in memory but failed to write it, Submit returns the appointment together
// with an error for which storage.IsPersistenceError is true.
func (s *Session) Submit(ctx context.Context, req Request) (models.Appointment, error) {
	if s.state != SlotSelected {
		return models.Appointment{}, ErrNoSlotSelected
	}

	client := req.Client.Trimmed()
	if verr := s.validate(client, req.Service); verr != nil {
		return models.Appointment{}, verr
	}

	// Availability is re-derived here; the grid the slot was picked from may
	// be stale.
	if !s.sched.IsAvailable(s.date, s.slot, s.store.All()) {
		s.Refresh()
		return models.Appointment{}, &ConflictError{Date: s.date, Time: s.slot}
	}

	apt := models.Appointment{
		ID:        s.newID(),
		Date:      s.date,
		Time:      s.slot,
		Client:    client,
		Service:   req.Service,
		CreatedAt: s.now().UnixMilli(),
	}

	err := s.store.Append(ctx, apt)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrSlotTaken):
		s.Refresh()
		return models.Appointment{}, &ConflictError{Date: s.date, Time: s.slot}
	case storage.IsPersistenceError(err):
		logger.Warn("Booking kept in memory only", "id", apt.ID, "error", err)
	default:
		return models.Appointment{}, errors.Wrap(err, "failed to store appointment")
	}

	s.state = Committed
	logger.Info("Appointment booked", "id", apt.ID, "date", apt.Date, "time", apt.Time)

	if s.feedback != nil {
		if err != nil {
			s.feedback.PostWithWarning(constants.BookingSuccessMessage, PersistenceWarning)
		} else {
			s.feedback.Post(constants.BookingSuccessMessage)
		}
	}

	s.reset()
	s.Refresh()
	return apt, err
}

func (s *Session) validate(client models.Client, service string) *ValidationError {
	verr := &ValidationError{Fields: map[string]string{}}

	if client.Name == "" {
		verr.Fields[FieldName] = MsgNameRequired
	}
	if client.Phone == "" {
		verr.Fields[FieldPhone] = MsgPhoneRequired
	}
	if client.Address == "" {
		verr.Fields[FieldAddress] = MsgAddressRequired
	}
	if !models.IsService(service) {
		verr.Fields[FieldService] = MsgServiceInvalid
	}
	if !s.sched.InBookingWindow(s.date, s.now()) {
		verr.Fields[FieldDate] = MsgDateOutsideWindow
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}
