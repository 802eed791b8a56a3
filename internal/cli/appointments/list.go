package appointments

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/scheduler"
)

type ListCmd struct {
	Date string `help:"Only show appointments on this day (YYYY-MM-DD)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	var appts []models.Appointment
	if c.Date != "" {
		if _, err := models.ParseDate(c.Date); err != nil {
			return err
		}
		appts = ctx.Store.ForDate(c.Date)
	} else {
		appts = ctx.Store.All()
	}

	out := ctx.Stdout()
	if len(appts) == 0 {
		fmt.Fprintln(out, "No appointments found.")
		return nil
	}

	rows := make([][]string, 0, len(appts))
	for _, apt := range scheduler.SortAppointments(appts) {
		rows = append(rows, []string{apt.Date, apt.Time, apt.Service, apt.Client.Name, apt.Client.Phone, apt.ID})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "TIME", "SERVICE", "CLIENT", "PHONE", "ID").
		Rows(rows...)
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "Total: %d\n", len(appts))
	return nil
}
