package storage

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/models"
)

// EncodeSnapshot serializes the full appointment collection as a JSON array.
func EncodeSnapshot(appointments []models.Appointment) ([]byte, error) {
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	data, err := json.Marshal(appointments)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize appointments")
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot. Empty input and
// a JSON null both decode to an empty collection.
func DecodeSnapshot(data []byte) ([]models.Appointment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Appointment{}, nil
	}

	var appointments []models.Appointment
	if err := json.Unmarshal(data, &appointments); err != nil {
		return nil, errors.Wrap(err, "failed to parse appointments")
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, nil
}
