package appointments

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/storage"
)

type CancelCmd struct {
	ID  string `arg:"" help:"Appointment ID to cancel."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *CancelCmd) Run(ctx *cli.Context) error {
	l, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer cli.ReleaseLock(l)
	ctx.Store.Load(context.Background())

	apt, ok := ctx.Store.Get(c.ID)
	if !ok {
		return errors.Newf("no appointment with ID %s", c.ID)
	}

	out := ctx.Stdout()
	if !c.Yes {
		fmt.Fprintf(out, "%s %s  %s  %s\n", apt.Date, apt.Time, apt.Service, apt.Client.Name)
		confirmed, err := ctx.Ask(constants.DeleteConfirmMessage)
		if err != nil {
			return errors.Wrap(err, "confirmation failed")
		}
		if !confirmed {
			fmt.Fprintln(out, "Cancellation aborted.")
			return nil
		}
	}

	if err := ctx.Store.Delete(context.Background(), c.ID); err != nil {
		if !storage.IsPersistenceError(err) {
			return err
		}
		fmt.Fprintf(out, "⚠️  Appointment removed for this session only: %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "✓ Cancelled appointment %s on %s at %s\n", apt.ID, apt.Date, apt.Time)
	return nil
}
