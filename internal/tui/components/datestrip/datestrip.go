package datestrip

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/salonlux/internal/constants"
)

var weekdays = [...]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Align(lipgloss.Center)

	selectedDayStyle = dayStyle.
				Foreground(lipgloss.Color("205")).
				BorderForeground(lipgloss.Color("205")).
				Bold(true)
)

// Model is the horizontal strip of bookable days.
type Model struct {
	days   []time.Time
	cursor int
}

func New(days []time.Time) Model {
	return Model{days: days}
}

// Weekday returns the short Portuguese weekday name for t.
func Weekday(t time.Time) string {
	return weekdays[t.Weekday()]
}

func (m *Model) SetDays(days []time.Time) {
	m.days = days
	if m.cursor >= len(days) {
		m.cursor = max(len(days)-1, 0)
	}
}

// Prev moves the cursor one day back and reports whether it moved.
func (m *Model) Prev() bool {
	if m.cursor == 0 {
		return false
	}
	m.cursor--
	return true
}

// Next moves the cursor one day forward and reports whether it moved.
func (m *Model) Next() bool {
	if m.cursor >= len(m.days)-1 {
		return false
	}
	m.cursor++
	return true
}

func (m Model) Cursor() int {
	return m.cursor
}

// SelectedDate returns the highlighted day as YYYY-MM-DD, or "" when empty.
func (m Model) SelectedDate() string {
	if len(m.days) == 0 {
		return ""
	}
	return m.days[m.cursor].Format(constants.DateFormat)
}

func (m Model) View() string {
	if len(m.days) == 0 {
		return ""
	}

	cells := make([]string, 0, len(m.days))
	for i, d := range m.days {
		label := fmt.Sprintf("%s\n%02d", strings.ToUpper(Weekday(d)), d.Day())
		if i == m.cursor {
			cells = append(cells, selectedDayStyle.Render(label))
		} else {
			cells = append(cells, dayStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
