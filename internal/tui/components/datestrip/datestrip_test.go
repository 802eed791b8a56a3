package datestrip

import (
	"strings"
	"testing"
	"time"
)

func week() []time.Time {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

func TestNavigationClamps(t *testing.T) {
	m := New(week())

	if m.Prev() {
		t.Error("Prev() on first day should not move")
	}
	for i := 0; i < 6; i++ {
		if !m.Next() {
			t.Fatalf("Next() failed at step %d", i)
		}
	}
	if m.Next() {
		t.Error("Next() on last day should not move")
	}
	if got := m.SelectedDate(); got != "2024-06-16" {
		t.Errorf("SelectedDate() = %q, want 2024-06-16", got)
	}
}

func TestWeekdayAndView(t *testing.T) {
	if got := Weekday(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)); got != "seg" {
		t.Errorf("Weekday(Monday) = %q, want seg", got)
	}

	view := New(week()).View()
	for _, want := range []string{"SEG", "DOM", "10", "16"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestEmptyStrip(t *testing.T) {
	m := New(nil)
	if m.SelectedDate() != "" || m.View() != "" || m.Next() {
		t.Error("empty strip should render nothing and select nothing")
	}
}
