// Package feedback holds the transient acknowledgment shown after a booking.
package feedback

import (
	"time"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
)

// Message is one posted acknowledgment. Generation identifies which expiry
// timer may clear it.
type Message struct {
	Text       string
	Warning    string
	Generation uint64
	ExpiresAt  time.Time
}

// Channel holds at most one message. Posting supersedes the current message
// and invalidates its pending expiry. Channel is not safe for concurrent use.
type Channel struct {
	delay      time.Duration
	now        func() time.Time
	generation uint64
	current    *Message
}

type Option func(*Channel)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

func New(delay time.Duration, opts ...Option) *Channel {
	if delay <= 0 {
		delay = constants.FeedbackDelay
	}
	c := &Channel{delay: delay, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post replaces the current message. The returned Message carries the
// generation the caller must hand back to Expire.
func (c *Channel) Post(text string) Message {
	return c.post(text, "")
}

// PostWithWarning posts text with a secondary warning line.
func (c *Channel) PostWithWarning(text, warning string) Message {
	return c.post(text, warning)
}

func (c *Channel) post(text, warning string) Message {
	c.generation++
	now := c.now()
	msg := Message{
		Text:       text,
		Warning:    warning,
		Generation: c.generation,
		ExpiresAt:  now.Add(c.delay),
	}
	c.current = &msg
	logger.Debug("Feedback posted", "generation", msg.Generation, "text", text)
	return msg
}

// Expire clears the current message if it belongs to generation. It reports
// whether anything was cleared; stale or repeated expiries are no-ops.
func (c *Channel) Expire(generation uint64) bool {
	if c.current == nil || c.current.Generation != generation {
		return false
	}
	c.current = nil
	logger.Debug("Feedback expired", "generation", generation)
	return true
}

// Current returns the visible message, if any.
func (c *Channel) Current() (Message, bool) {
	if c.current == nil {
		return Message{}, false
	}
	return *c.current, true
}

// Delay returns how long a message stays visible.
func (c *Channel) Delay() time.Duration {
	return c.delay
}
