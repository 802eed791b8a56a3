package slotgrid

import (
	"strings"
	"testing"

	"github.com/julianstephens/salonlux/internal/models"
)

func grid() []models.TimeSlot {
	return []models.TimeSlot{
		{Time: "09:00", Available: true},
		{Time: "10:00", Available: false},
		{Time: "11:00", Available: true},
	}
}

func TestMoveClampsCursor(t *testing.T) {
	m := New(grid())

	m.Move(-1)
	if m.Cursor() != 0 {
		t.Errorf("Cursor() = %d after moving above top, want 0", m.Cursor())
	}
	m.Move(5)
	if slot, _ := m.Selected(); slot.Time != "11:00" {
		t.Errorf("Selected() = %q, want 11:00", slot.Time)
	}

	m.SetSlots(grid()[:1])
	if m.Cursor() != 0 {
		t.Errorf("Cursor() = %d after shrinking grid, want 0", m.Cursor())
	}
}

func TestViewAndFree(t *testing.T) {
	m := New(grid())
	if m.Free() != 2 {
		t.Errorf("Free() = %d, want 2", m.Free())
	}

	view := m.View()
	if strings.Count(view, LabelAvailable) != 2 || strings.Count(view, LabelOccupied) != 1 {
		t.Errorf("unexpected grid view:\n%s", view)
	}
}

func TestEmptyGrid(t *testing.T) {
	m := New(nil)
	m.Move(1)
	if _, ok := m.Selected(); ok {
		t.Error("empty grid should have no selection")
	}
}
