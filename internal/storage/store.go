package storage

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/models"
)

var (
	// ErrDuplicateID is returned when an appended appointment reuses an id.
	ErrDuplicateID = errors.New("appointment id already exists")
	// ErrSlotTaken is returned when an appended appointment occupies a
	// (date, time) pair that is already booked.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrPersistence marks a failed snapshot write. The in-memory collection
	// has already been updated when it is returned.
	ErrPersistence = errors.New("failed to persist appointments")
)

// Store is the authoritative appointment collection. It is the only writer of
// the snapshot key and rewrites the whole snapshot after every mutation.
// Store is not safe for concurrent use.
type Store struct {
	backend      Backend
	key          string
	appointments []models.Appointment
	loadErr      error
}

// NewStore creates a store persisting under the default appointments key.
func NewStore(backend Backend) *Store {
	return NewStoreWithKey(backend, constants.AppointmentsKey)
}

// NewStoreWithKey creates a store persisting under key.
func NewStoreWithKey(backend Backend, key string) *Store {
	return &Store{
		backend:      backend,
		key:          key,
		appointments: []models.Appointment{},
	}
}

// Load reads the persisted snapshot. A missing, unreadable or malformed
// snapshot leaves the store empty; the cause is kept in LoadErr and logged,
// never returned.
func (s *Store) Load(ctx context.Context) {
	s.appointments = []models.Appointment{}
	s.loadErr = nil

	ctx, cancel := context.WithTimeout(ctx, constants.BackendTimeout)
	defer cancel()

	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Debug("No stored appointments, starting empty", "key", s.key)
			return
		}
		s.loadErr = errors.Wrap(err, "failed to read appointments")
		logger.Warn("Could not read stored appointments, starting empty", "key", s.key, "error", err)
		return
	}

	appointments, err := DecodeSnapshot(data)
	if err != nil {
		s.loadErr = err
		logger.Warn("Stored appointments are malformed, starting empty", "key", s.key, "error", err)
		return
	}

	s.appointments = appointments
	logger.Debug("Loaded appointments", "key", s.key, "count", len(appointments))
}

// LoadErr returns the read failure swallowed by the last Load, if any.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []models.Appointment {
	out := make([]models.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// Len returns the number of stored appointments.
func (s *Store) Len() int {
	return len(s.appointments)
}

// Get looks up an appointment by id.
func (s *Store) Get(id string) (models.Appointment, bool) {
	for _, apt := range s.appointments {
		if apt.ID == id {
			return apt, true
		}
	}
	return models.Appointment{}, false
}

// ForDate returns the appointments booked on date in insertion order.
func (s *Store) ForDate(date string) []models.Appointment {
	var out []models.Appointment
	for _, apt := range s.appointments {
		if apt.Date == date {
			out = append(out, apt)
		}
	}
	return out
}

// Append adds apt and persists the snapshot. Duplicate ids and occupied
// (date, time) pairs are rejected without touching the collection. A write
// failure keeps apt in memory and returns an error marked ErrPersistence.
func (s *Store) Append(ctx context.Context, apt models.Appointment) error {
	for _, existing := range s.appointments {
		if existing.ID == apt.ID {
			return errors.Wrapf(ErrDuplicateID, "appointment %s", apt.ID)
		}
		if existing.Date == apt.Date && existing.Time == apt.Time {
			return errors.Wrapf(ErrSlotTaken, "%s at %s", apt.Date, apt.Time)
		}
	}

	s.appointments = append(s.appointments, apt)
	return s.persist(ctx)
}

// Delete removes the appointment with id and persists the snapshot. Unknown
// ids are a no-op and do not trigger a write.
func (s *Store) Delete(ctx context.Context, id string) error {
	idx := -1
	for i, apt := range s.appointments {
		if apt.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		logger.Debug("Delete of unknown appointment ignored", "id", id)
		return nil
	}

	remaining := make([]models.Appointment, 0, len(s.appointments)-1)
	remaining = append(remaining, s.appointments[:idx]...)
	remaining = append(remaining, s.appointments[idx+1:]...)
	s.appointments = remaining
	return s.persist(ctx)
}

// Replace swaps the whole collection for appointments and persists it. A list
// with a repeated id or (date, time) pair is refused and the store is left
// unchanged. A write failure keeps the new collection in memory and returns
// an error marked ErrPersistence.
func (s *Store) Replace(ctx context.Context, appointments []models.Appointment) error {
	if err := CheckUnique(appointments); err != nil {
		return err
	}

	next := make([]models.Appointment, len(appointments))
	copy(next, appointments)
	s.appointments = next
	logger.Debug("Replaced appointments", "key", s.key, "count", len(next))
	return s.persist(ctx)
}

// CheckUnique returns ErrDuplicateID or ErrSlotTaken for the first repeated
// id or (date, time) pair in appointments.
func CheckUnique(appointments []models.Appointment) error {
	ids := make(map[string]struct{}, len(appointments))
	slots := make(map[string]string, len(appointments))
	for _, apt := range appointments {
		if _, ok := ids[apt.ID]; ok {
			return errors.Wrapf(ErrDuplicateID, "appointment %s", apt.ID)
		}
		ids[apt.ID] = struct{}{}

		if other, ok := slots[apt.SlotKey()]; ok {
			return errors.Wrapf(ErrSlotTaken, "%s at %s (%s and %s)", apt.Date, apt.Time, other, apt.ID)
		}
		slots[apt.SlotKey()] = apt.ID
	}
	return nil
}

// Backend returns the underlying key-value backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Key returns the storage key the snapshot is written under.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) persist(ctx context.Context) error {
	data, err := EncodeSnapshot(s.appointments)
	if err != nil {
		return errors.Mark(err, ErrPersistence)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.BackendTimeout)
	defer cancel()

	if err := s.backend.Put(ctx, s.key, data); err != nil {
		logger.Warn("Failed to persist appointments, keeping in-memory state", "key", s.key, "error", err)
		return errors.Mark(errors.Wrap(err, "failed to write appointments"), ErrPersistence)
	}
	return nil
}

// IsPersistenceError reports whether err is a snapshot write failure.
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}
