package appointments

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/scheduler"
)

const EmptyMessage = "Nenhum agendamento encontrado."

var emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true).Padding(1, 2)

// DeleteRequestMsg asks the parent to confirm cancelling appointment ID.
type DeleteRequestMsg struct {
	ID string
}

type Item struct {
	Appointment models.Appointment
}

func (i Item) Title() string {
	date := i.Appointment.Date
	if t, err := models.ParseDate(date); err == nil {
		date = t.Format("02/01/2006")
	}
	return fmt.Sprintf("%s às %s · %s", date, i.Appointment.Time, i.Appointment.Client.Name)
}

func (i Item) Description() string {
	service := i.Appointment.Service
	if service == "" {
		service = "Serviço não informado"
	}
	return fmt.Sprintf("%s · %s · %s", service, i.Appointment.Client.Phone, i.Appointment.Client.Address)
}

func (i Item) FilterValue() string { return i.Appointment.Client.Name }

type KeyMap struct {
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "cancelar agendamento"),
		),
	}
}

// Model lists every stored appointment ordered by date and time.
type Model struct {
	list list.Model
	keys KeyMap
}

func New(appointments []models.Appointment, width, height int) Model {
	l := list.New(toItems(appointments), list.NewDefaultDelegate(), width, height)
	l.Title = "Agendamentos"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("agendamento", "agendamentos")
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

func toItems(appointments []models.Appointment) []list.Item {
	sorted := scheduler.SortAppointments(appointments)
	items := make([]list.Item, len(sorted))
	for i, a := range sorted {
		items[i] = Item{Appointment: a}
	}
	return items
}

func (m *Model) SetAppointments(appointments []models.Appointment) {
	m.list.SetItems(toItems(appointments))
}

// Len returns the number of listed appointments.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the highlighted appointment.
func (m Model) Selected() (models.Appointment, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Appointment{}, false
	}
	return item.Appointment, true
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Delete) {
		if item, ok := m.list.SelectedItem().(Item); ok {
			return m, func() tea.Msg {
				return DeleteRequestMsg{ID: item.Appointment.ID}
			}
		}
		return m, nil
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Len() == 0 {
		return emptyStyle.Render(EmptyMessage)
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
