package appointments

import (
	"fmt"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/models"
)

type SlotsCmd struct {
	Date string `help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *SlotsCmd) Run(ctx *cli.Context) error {
	date, err := resolveDate(ctx, c.Date)
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	grid := ctx.Scheduler.Availability(date, ctx.Store.All())
	free := 0
	fmt.Fprintf(out, "Availability for %s\n\n", date)
	for _, ts := range grid {
		status := "ocupado"
		if ts.Available {
			status = "livre"
			free++
		}
		fmt.Fprintf(out, "  %s  %s\n", ts.Time, status)
	}
	fmt.Fprintf(out, "\n%d of %d slots free\n", free, len(grid))
	return nil
}

// resolveDate validates date, defaulting to today.
func resolveDate(ctx *cli.Context, date string) (string, error) {
	if date == "" {
		return ctx.Clock().Format(constants.DateFormat), nil
	}
	if _, err := models.ParseDate(date); err != nil {
		return "", err
	}
	return date, nil
}
