package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/booking"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/tui/state"
)

const (
	FormTitle       = "Finalizar Agendamento"
	DeleteWarning   = "Atenção: não foi possível salvar a alteração no armazenamento."
	DeleteFailedFmt = "Não foi possível cancelar o agendamento: %v"
	BookFailedFmt   = "Não foi possível concluir o agendamento: %v"
)

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

// FormatSlot renders date and slot the way the form header shows them.
func FormatSlot(date, slot string) string {
	if t, err := models.ParseDate(date); err == nil {
		date = t.Format("02/01/2006")
	}
	return fmt.Sprintf("%s às %s", date, slot)
}

// NewBookingForm creates the booking form for the selected date and slot
func NewBookingForm(fm *state.BookingFormModel, date, slot string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(FormTitle).
				Description(FormatSlot(date, slot)),
			huh.NewSelect[string]().
				Title("Serviço Desejado").
				Options(huh.NewOptions(constants.Services...)...).
				Value(&fm.Service),
			huh.NewInput().
				Title("Nome Completo").
				Placeholder("Ex: Ana Silva").
				Value(&fm.Name).
				Validate(required(booking.MsgNameRequired)),
			huh.NewInput().
				Title("Telefone / WhatsApp").
				Placeholder("Ex: (11) 99999-9999").
				Value(&fm.Phone).
				Validate(required(booking.MsgPhoneRequired)),
			huh.NewInput().
				Title("Endereço").
				Placeholder("Rua das Flores, 123").
				Value(&fm.Address).
				Validate(required(booking.MsgAddressRequired)),
		),
	).WithTheme(huh.ThemeDracula())
}
