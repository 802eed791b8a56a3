package models

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/constants"
)

// Client is the contact record captured at booking time. It is embedded by
// value in an Appointment and has no identity of its own.
type Client struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Trimmed returns a copy of the client with surrounding whitespace removed.
func (c Client) Trimmed() Client {
	return Client{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// Appointment is a booked slot. Appointments are immutable once created.
type Appointment struct {
	ID        string `json:"id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:00
	Client    Client `json:"client"`
	Service   string `json:"service,omitempty"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
}

// SlotKey identifies the (date, time) pair an appointment occupies.
func (a Appointment) SlotKey() string {
	return a.Date + "T" + a.Time
}

// Start combines the appointment date and time in the given location.
func (a Appointment) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(constants.DateFormat+" "+constants.TimeFormat, a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid appointment start %q %q", a.Date, a.Time)
	}
	return t, nil
}

// Created returns CreatedAt as a time.Time.
func (a Appointment) Created() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// TimeSlot is one cell of the availability grid. It is derived on demand and
// never persisted.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// IsService reports whether name is part of the service catalog.
func IsService(name string) bool {
	for _, s := range constants.Services {
		if s == name {
			return true
		}
	}
	return false
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, date, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q (expected YYYY-MM-DD)", date)
	}
	return t, nil
}
