// Package export renders appointments as iCalendar or JSON documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/scheduler"
)

// Format is an export document type.
type Format string

const (
	FormatICS  Format = "ics"
	FormatJSON Format = "json"
)

const productID = "-//SalonLux//salonlux " + constants.Version + "//PT"

// Result summarizes an export run.
type Result struct {
	Exported int
	Skipped  int
}

// Write renders appointments in format to w, sorted by date then time.
func Write(w io.Writer, format Format, appointments []models.Appointment, loc *time.Location, now time.Time) (Result, error) {
	switch format {
	case FormatICS:
		doc, res := ICS(appointments, loc, now)
		if _, err := io.WriteString(w, doc); err != nil {
			return res, errors.Wrap(err, "failed to write calendar")
		}
		return res, nil
	case FormatJSON:
		data, err := JSON(appointments)
		if err != nil {
			return Result{}, err
		}
		if _, err := w.Write(data); err != nil {
			return Result{}, errors.Wrap(err, "failed to write json")
		}
		return Result{Exported: len(appointments)}, nil
	default:
		return Result{}, errors.Newf("unsupported export format %q (expected ics or json)", format)
	}
}

// ICS builds a VCALENDAR with one VEVENT per appointment. Records whose date
// or time cannot be parsed are skipped and counted.
func ICS(appointments []models.Appointment, loc *time.Location, now time.Time) (string, Result) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("SalonLux")

	var res Result
	for _, apt := range scheduler.SortAppointments(appointments) {
		start, err := apt.Start(loc)
		if err != nil {
			logger.Warn("Skipping appointment with invalid start", "id", apt.ID, "error", err)
			res.Skipped++
			continue
		}

		event := cal.AddEvent(apt.ID + "@" + constants.AppName)
		event.SetDtStampTime(now)
		event.SetCreatedTime(apt.Created())
		event.SetStartAt(start)
		event.SetEndAt(start.Add(constants.SlotDurationMinutes * time.Minute))
		event.SetSummary(summary(apt))
		event.SetDescription(description(apt))
		res.Exported++
	}

	return cal.Serialize(), res
}

func summary(apt models.Appointment) string {
	service := apt.Service
	if service == "" {
		service = "Agendamento"
	}
	return fmt.Sprintf("%s - %s", service, apt.Client.Name)
}

func description(apt models.Appointment) string {
	lines := []string{
		"Cliente: " + apt.Client.Name,
		"Telefone: " + apt.Client.Phone,
		"Endereço: " + apt.Client.Address,
	}
	return strings.Join(lines, "\n")
}

// JSON returns the sorted appointments as an indented JSON array using the
// persisted record shape.
func JSON(appointments []models.Appointment) ([]byte, error) {
	sorted := scheduler.SortAppointments(appointments)
	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode appointments")
	}
	return append(data, '\n'), nil
}

// ParseFormat accepts "ics" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatICS:
		return FormatICS, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Newf("unsupported export format %q (expected ics or json)", s)
	}
}
