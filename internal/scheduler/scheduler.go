package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/models"
)

// Scheduler produces the slot calendar and availability grid for the
// configured operating hours. It holds no booking state.
type Scheduler struct {
	openingHour int
	closingHour int
	bookingDays int
	slots       []string
}

// New creates a Scheduler. Hours are expected to be validated by the caller
// (0 <= opening < closing <= 24); bookingDays below 1 falls back to the default.
func New(openingHour, closingHour, bookingDays int) *Scheduler {
	if bookingDays < 1 {
		bookingDays = constants.DefaultBookingDays
	}
	return &Scheduler{
		openingHour: openingHour,
		closingHour: closingHour,
		bookingDays: bookingDays,
		slots:       GenerateSlots(openingHour, closingHour),
	}
}

// Default returns a Scheduler for the default salon hours.
func Default() *Scheduler {
	return New(constants.DefaultOpeningHour, constants.DefaultClosingHour, constants.DefaultBookingDays)
}

// GenerateSlots returns the bookable start times between opening and closing.
// The closing hour itself is never a start time.
func GenerateSlots(openingHour, closingHour int) []string {
	step := constants.SlotDurationMinutes / 60
	slots := make([]string, 0, max(closingHour-openingHour, 0))
	for hour := openingHour; hour < closingHour; hour += step {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
	}
	return slots
}

// Hours returns the configured opening and closing hour.
func (s *Scheduler) Hours() (int, int) {
	return s.openingHour, s.closingHour
}

// Slots returns a copy of the slot labels.
func (s *Scheduler) Slots() []string {
	out := make([]string, len(s.slots))
	copy(out, s.slots)
	return out
}

// IsSlot reports whether label is one of the generated slot labels.
func (s *Scheduler) IsSlot(label string) bool {
	for _, slot := range s.slots {
		if slot == label {
			return true
		}
	}
	return false
}

// ResolveAvailability marks each slot occupied when an appointment on date
// carries exactly that label. Appointments whose time matches no slot are
// ignored.
func ResolveAvailability(date string, slots []string, appointments []models.Appointment) []models.TimeSlot {
	occupied := make(map[string]struct{})
	for _, apt := range appointments {
		if apt.Date == date {
			occupied[apt.Time] = struct{}{}
		}
	}

	grid := make([]models.TimeSlot, len(slots))
	for i, slot := range slots {
		_, taken := occupied[slot]
		grid[i] = models.TimeSlot{Time: slot, Available: !taken}
	}
	return grid
}

// Availability resolves the grid for date against appointments.
func (s *Scheduler) Availability(date string, appointments []models.Appointment) []models.TimeSlot {
	return ResolveAvailability(date, s.slots, appointments)
}

// IsAvailable reports whether slot is a generated slot left free on date.
func (s *Scheduler) IsAvailable(date, slot string, appointments []models.Appointment) bool {
	for _, ts := range s.Availability(date, appointments) {
		if ts.Time == slot {
			return ts.Available
		}
	}
	return false
}

// DateOptions returns the days offered for new bookings, starting at today.
func (s *Scheduler) DateOptions(today time.Time) []time.Time {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	days := make([]time.Time, 0, s.bookingDays)
	for i := 0; i < s.bookingDays; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// InBookingWindow reports whether date is one of DateOptions(today).
func (s *Scheduler) InBookingWindow(date string, today time.Time) bool {
	for _, d := range s.DateOptions(today) {
		if d.Format(constants.DateFormat) == date {
			return true
		}
	}
	return false
}

// SortAppointments returns appointments ordered by date then time. Ties keep
// insertion order.
func SortAppointments(appointments []models.Appointment) []models.Appointment {
	sorted := make([]models.Appointment, len(appointments))
	copy(sorted, appointments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Time < sorted[j].Time
	})
	return sorted
}
