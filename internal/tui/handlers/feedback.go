package handlers

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/salonlux/internal/feedback"
	"github.com/julianstephens/salonlux/internal/tui/state"
)

// FeedbackExpiredMsg fires when the toast posted as Generation times out.
type FeedbackExpiredMsg struct {
	Generation uint64
}

// ScheduleFeedbackExpiry starts the timer for the current toast, if any.
func ScheduleFeedbackExpiry(ch *feedback.Channel) tea.Cmd {
	msg, ok := ch.Current()
	if !ok {
		return nil
	}
	gen := msg.Generation
	return tea.Tick(ch.Delay(), func(time.Time) tea.Msg {
		return FeedbackExpiredMsg{Generation: gen}
	})
}

// HandleFeedbackExpired clears the toast unless a newer one replaced it.
func HandleFeedbackExpired(m *state.Model, msg FeedbackExpiredMsg) {
	m.Feedback.Expire(msg.Generation)
}
