package slotgrid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/salonlux/internal/models"
)

const (
	LabelAvailable = "Disponível"
	LabelOccupied  = "Ocupado"
)

var (
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	occupiedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// Model renders the availability grid of one day and tracks a cursor over it.
type Model struct {
	slots  []models.TimeSlot
	cursor int
}

func New(slots []models.TimeSlot) Model {
	return Model{slots: slots}
}

// SetSlots replaces the grid, keeping the cursor on the same row when possible.
func (m *Model) SetSlots(slots []models.TimeSlot) {
	m.slots = slots
	if m.cursor >= len(slots) {
		m.cursor = max(len(slots)-1, 0)
	}
}

// Move shifts the cursor by delta rows, clamped to the grid.
func (m *Model) Move(delta int) {
	if len(m.slots) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.slots)-1)
}

func (m Model) Cursor() int {
	return m.cursor
}

// Selected returns the slot under the cursor.
func (m Model) Selected() (models.TimeSlot, bool) {
	if len(m.slots) == 0 {
		return models.TimeSlot{}, false
	}
	return m.slots[m.cursor], true
}

// Free returns the number of available slots.
func (m Model) Free() int {
	n := 0
	for _, s := range m.slots {
		if s.Available {
			n++
		}
	}
	return n
}

func (m Model) View() string {
	var b strings.Builder
	for i, s := range m.slots {
		prefix, label := "  ", s.Time
		if i == m.cursor {
			prefix, label = cursorStyle.Render("› "), cursorStyle.Render(s.Time)
		}

		var status string
		if s.Available {
			status = availableStyle.Render(LabelAvailable)
		} else {
			status = occupiedStyle.Render(LabelOccupied)
		}

		fmt.Fprintf(&b, "%s%s  %s", prefix, label, status)
		if i < len(m.slots)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
