package booking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Form fields reported by ValidationError.
const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldAddress = "address"
	FieldService = "service"
	FieldDate    = "date"
)

// User-facing messages.
const (
	MsgNameRequired      = "Nome é obrigatório"
	MsgPhoneRequired     = "Telefone é obrigatório"
	MsgAddressRequired   = "Endereço é obrigatório"
	MsgServiceInvalid    = "Selecione um serviço válido"
	MsgDateOutsideWindow = "Data fora do período de agendamento"
	PersistenceWarning   = "Atenção: não foi possível salvar o agendamento no armazenamento."
)

// ErrNoSlotSelected is returned by Submit when no slot is selected.
var ErrNoSlotSelected = errors.New("no slot selected")

// ValidationError maps form fields to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid booking: " + strings.Join(parts, "; ")
}

// Field returns the message for field, or "".
func (e *ValidationError) Field(field string) string {
	return e.Fields[field]
}

// ConflictError means the selected slot was taken before the commit.
type ConflictError struct {
	Date string
	Time string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s on %s is already booked", e.Time, e.Date)
}

// UserMessage is the text shown next to the form.
func (e *ConflictError) UserMessage() string {
	return fmt.Sprintf("O horário %s de %s acabou de ser reservado. Escolha outro horário.", e.Time, e.Date)
}
