package appointments

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/booking"
	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/storage"
)

type BookCmd struct {
	Date    string `help:"Day to book (YYYY-MM-DD). Defaults to today."`
	Time    string `help:"Slot start time, e.g. 14:00." required:""`
	Name    string `help:"Client name." required:""`
	Phone   string `help:"Client phone." required:""`
	Address string `help:"Client address." required:""`
	Service string `help:"Service from the catalog." default:"${default_service}"`
}

func (c *BookCmd) Run(ctx *cli.Context) error {
	date, err := resolveDate(ctx, c.Date)
	if err != nil {
		return err
	}

	l, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer cli.ReleaseLock(l)
	ctx.Store.Load(context.Background())

	session := booking.NewSession(ctx.Store, ctx.Scheduler,
		booking.WithClock(ctx.Clock),
	)
	if err := session.SelectDate(date); err != nil {
		return err
	}
	if !session.SelectSlot(c.Time) {
		if !ctx.Scheduler.IsSlot(c.Time) {
			return errors.Newf("%q is not a bookable slot (open %s)", c.Time, slotRange(ctx))
		}
		return &booking.ConflictError{Date: date, Time: c.Time}
	}

	apt, err := session.Submit(context.Background(), booking.Request{
		Client: models.Client{
			Name:    c.Name,
			Phone:   c.Phone,
			Address: c.Address,
		},
		Service: c.Service,
	})
	if err != nil && !storage.IsPersistenceError(err) {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintf(out, "✓ %s\n", constants.BookingSuccessMessage)
	fmt.Fprintf(out, "  %s %s  %s  %s (ID: %s)\n", apt.Date, apt.Time, apt.Service, apt.Client.Name, apt.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n   %v\n", booking.PersistenceWarning, err)
	}
	return nil
}

func slotRange(ctx *cli.Context) string {
	opening, closing := ctx.Scheduler.Hours()
	return fmt.Sprintf("%02d:00-%02d:00", opening, closing)
}
