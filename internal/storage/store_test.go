package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/julianstephens/salonlux/internal/models"
)

// memBackend is an in-memory Backend with failure injection.
type memBackend struct {
	values  map[string][]byte
	puts    int
	getErr  error
	putErr  error
	deleted []string
}

func newMemBackend() *memBackend {
	return &memBackend{values: make(map[string][]byte)}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memBackend) Put(_ context.Context, key string, value []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.values, key)
	return nil
}

func (m *memBackend) Ping(context.Context) error { return nil }
func (m *memBackend) Close() error               { return nil }
func (m *memBackend) Location() string           { return "memory" }

func sampleAppointment(id, date, slot string) models.Appointment {
	return models.Appointment{
		ID:        id,
		Date:      date,
		Time:      slot,
		Client:    models.Client{Name: "Ana", Phone: "11999990000", Address: "Rua X, 10"},
		Service:   "Corte de Cabelo",
		CreatedAt: 1718028000000,
	}
}

func TestStoreLoad_MissingSnapshotStartsEmpty(t *testing.T) {
	store := NewStore(newMemBackend())
	store.Load(context.Background())

	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if store.LoadErr() != nil {
		t.Errorf("LoadErr() = %v, want nil for a missing snapshot", store.LoadErr())
	}
}

func TestStoreLoad_MalformedSnapshotStartsEmpty(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated json", `[{"id":"a1","date":"2024-06-10"`},
		{"object instead of array", `{"id":"a1"}`},
		{"garbage", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMemBackend()
			backend.values["salonlux_appointments_v1"] = []byte(tt.data)

			store := NewStore(backend)
			store.Load(context.Background())

			if store.Len() != 0 {
				t.Errorf("Len() = %d, want 0", store.Len())
			}
			if store.LoadErr() == nil {
				t.Error("LoadErr() = nil, want the parse failure")
			}
		})
	}
}

func TestStoreLoad_ReadFailureStartsEmpty(t *testing.T) {
	backend := newMemBackend()
	backend.getErr = errors.New("disk on fire")

	store := NewStore(backend)
	store.Load(context.Background())

	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if store.LoadErr() == nil {
		t.Error("LoadErr() = nil, want read failure")
	}
}

func TestStoreLoad_NullAndEmptySnapshot(t *testing.T) {
	for _, data := range []string{"null", "", "  "} {
		backend := newMemBackend()
		backend.values["salonlux_appointments_v1"] = []byte(data)

		store := NewStore(backend)
		store.Load(context.Background())
		if store.Len() != 0 || store.LoadErr() != nil {
			t.Errorf("snapshot %q: Len() = %d, LoadErr() = %v", data, store.Len(), store.LoadErr())
		}
	}
}

func TestStoreAppendPersistsWholeSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)
	store.Load(ctx)

	first := sampleAppointment("a1", "2024-06-10", "14:00")
	second := sampleAppointment("a2", "2024-06-10", "15:00")

	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	if backend.puts != 2 {
		t.Errorf("backend writes = %d, want 2", backend.puts)
	}

	persisted, err := DecodeSnapshot(backend.values["salonlux_appointments_v1"])
	if err != nil {
		t.Fatalf("persisted snapshot does not decode: %v", err)
	}
	if diff := cmp.Diff([]models.Appointment{first, second}, persisted); diff != "" {
		t.Errorf("persisted snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreAppendRejectsConflicts(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)

	if err := store.Append(ctx, sampleAppointment("a1", "2024-06-10", "14:00")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	err := store.Append(ctx, sampleAppointment("a2", "2024-06-10", "14:00"))
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("Append() same slot error = %v, want ErrSlotTaken", err)
	}

	err = store.Append(ctx, sampleAppointment("a1", "2024-06-11", "09:00"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Append() duplicate id error = %v, want ErrDuplicateID", err)
	}

	if store.Len() != 1 {
		t.Errorf("Len() = %d after rejected appends, want 1", store.Len())
	}
	if backend.puts != 1 {
		t.Errorf("backend writes = %d, want 1", backend.puts)
	}
}

func TestStoreAppendWriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	backend.putErr = errors.New("read-only filesystem")
	store := NewStore(backend)

	err := store.Append(ctx, sampleAppointment("a1", "2024-06-10", "14:00"))
	if !IsPersistenceError(err) {
		t.Fatalf("Append() error = %v, want persistence error", err)
	}
	if _, ok := store.Get("a1"); !ok {
		t.Error("appointment missing from memory after failed write")
	}
}

func TestStoreReplace(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)
	if err := store.Append(ctx, sampleAppointment("old", "2024-06-09", "10:00")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	next := []models.Appointment{
		sampleAppointment("a1", "2024-06-10", "14:00"),
		sampleAppointment("a2", "2024-06-10", "15:00"),
	}
	if err := store.Replace(ctx, next); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if diff := cmp.Diff(next, store.All()); diff != "" {
		t.Errorf("All() after Replace mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewStore(backend)
	reloaded.Load(ctx)
	if diff := cmp.Diff(next, reloaded.All()); diff != "" {
		t.Errorf("persisted snapshot mismatch (-want +got):\n%s", diff)
	}

	if err := store.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace(nil) failed: %v", err)
	}
	if store.Len() != 0 || string(backend.values[store.Key()]) != "[]" {
		t.Errorf("Replace(nil) left %d appointments, snapshot %s", store.Len(), backend.values[store.Key()])
	}
}

func TestStoreReplaceRejectsConflicts(t *testing.T) {
	tests := []struct {
		name    string
		next    []models.Appointment
		wantErr error
	}{
		{
			name: "double-booked slot",
			next: []models.Appointment{
				sampleAppointment("a1", "2024-06-10", "14:00"),
				sampleAppointment("a2", "2024-06-10", "14:00"),
			},
			wantErr: ErrSlotTaken,
		},
		{
			name: "duplicate id",
			next: []models.Appointment{
				sampleAppointment("a1", "2024-06-10", "14:00"),
				sampleAppointment("a1", "2024-06-11", "09:00"),
			},
			wantErr: ErrDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := newMemBackend()
			store := NewStore(backend)
			current := sampleAppointment("c1", "2024-06-12", "09:00")
			if err := store.Append(ctx, current); err != nil {
				t.Fatalf("Append() failed: %v", err)
			}

			if err := store.Replace(ctx, tt.next); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Replace() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff([]models.Appointment{current}, store.All()); diff != "" {
				t.Errorf("store changed by refused Replace (-want +got):\n%s", diff)
			}
			if backend.puts != 1 {
				t.Errorf("backend writes = %d, want 1", backend.puts)
			}
		})
	}
}

func TestStoreReplaceWriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	backend.putErr = errors.New("read-only filesystem")
	store := NewStore(backend)

	err := store.Replace(ctx, []models.Appointment{sampleAppointment("a1", "2024-06-10", "14:00")})
	if !IsPersistenceError(err) {
		t.Fatalf("Replace() error = %v, want persistence error", err)
	}
	if _, ok := store.Get("a1"); !ok {
		t.Error("replacement missing from memory after failed write")
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)

	_ = store.Append(ctx, sampleAppointment("a1", "2024-06-10", "14:00"))
	_ = store.Append(ctx, sampleAppointment("a2", "2024-06-10", "15:00"))
	_ = store.Append(ctx, sampleAppointment("a3", "2024-06-11", "09:00"))
	writes := backend.puts

	if err := store.Delete(ctx, "a2"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if backend.puts != writes+1 {
		t.Errorf("Delete() did not persist the snapshot")
	}

	var ids []string
	for _, apt := range store.All() {
		ids = append(ids, apt.ID)
	}
	if diff := cmp.Diff([]string{"a1", "a3"}, ids); diff != "" {
		t.Errorf("remaining ids mismatch (-want +got):\n%s", diff)
	}

	// The freed slot can be booked again.
	if err := store.Append(ctx, sampleAppointment("a4", "2024-06-10", "15:00")); err != nil {
		t.Errorf("Append() into freed slot failed: %v", err)
	}
}

func TestStoreDeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)
	_ = store.Append(ctx, sampleAppointment("a1", "2024-06-10", "14:00"))
	writes := backend.puts

	if err := store.Delete(ctx, "does-not-exist"); err != nil {
		t.Errorf("Delete() of unknown id returned error: %v", err)
	}
	if err := store.Delete(ctx, "does-not-exist"); err != nil {
		t.Errorf("repeated Delete() returned error: %v", err)
	}
	if backend.puts != writes {
		t.Errorf("Delete() of unknown id wrote the snapshot")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)

	want := []models.Appointment{
		sampleAppointment("a1", "2024-06-10", "14:00"),
		sampleAppointment("a2", "2024-06-12", "09:00"),
		{ID: "a3", Date: "2024-06-10", Time: "18:00", Client: models.Client{Name: "Bia", Phone: "1", Address: "Av. Y"}, CreatedAt: 42},
	}
	for _, apt := range want {
		if err := store.Append(ctx, apt); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	reloaded := NewStore(backend)
	reloaded.Load(ctx)

	sortByID := cmpopts.SortSlices(func(a, b models.Appointment) bool { return a.ID < b.ID })
	if diff := cmp.Diff(want, reloaded.All(), sortByID); diff != "" {
		t.Errorf("reloaded collection mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemBackend())
	_ = store.Append(ctx, sampleAppointment("a1", "2024-06-10", "14:00"))

	all := store.All()
	all[0].ID = "mutated"

	if _, ok := store.Get("a1"); !ok {
		t.Error("mutating All() result changed the store")
	}
}

func TestStoreForDate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemBackend())
	_ = store.Append(ctx, sampleAppointment("a1", "2024-06-10", "14:00"))
	_ = store.Append(ctx, sampleAppointment("a2", "2024-06-11", "14:00"))
	_ = store.Append(ctx, sampleAppointment("a3", "2024-06-10", "09:00"))

	got := store.ForDate("2024-06-10")
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a3" {
		t.Errorf("ForDate() = %+v, want a1 then a3", got)
	}
}

func TestSnapshotWireFormat(t *testing.T) {
	data, err := EncodeSnapshot([]models.Appointment{sampleAppointment("a1", "2024-06-10", "14:00")})
	if err != nil {
		t.Fatalf("EncodeSnapshot() failed: %v", err)
	}
	want := `[{"id":"a1","date":"2024-06-10","time":"14:00","client":{"name":"Ana","phone":"11999990000","address":"Rua X, 10"},"service":"Corte de Cabelo","createdAt":1718028000000}]`
	if string(data) != want {
		t.Errorf("EncodeSnapshot() =\n%s\nwant\n%s", data, want)
	}

	empty, err := EncodeSnapshot(nil)
	if err != nil || string(empty) != "[]" {
		t.Errorf("EncodeSnapshot(nil) = %s, %v; want []", empty, err)
	}
}
