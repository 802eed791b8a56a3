package system

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/config"
	"github.com/julianstephens/salonlux/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Overwrite the config file and reset stored appointments (a backup is taken first)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	cfgPath, err := config.ExpandPath(ctx.ConfigPath)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(cfgPath)
	switch {
	case os.IsNotExist(statErr) || c.Force:
		if err := ctx.Config.Save(cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote config: %s\n", cfgPath)
	case statErr != nil:
		return errors.Wrap(statErr, "failed to access config file")
	default:
		fmt.Fprintf(out, "Using existing config: %s\n", cfgPath)
	}

	l, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer cli.ReleaseLock(l)

	bg := context.Background()
	backend := ctx.Store.Backend()
	_, err = backend.Get(bg, ctx.Store.Key())
	switch {
	case err == nil && !c.Force:
		ctx.Store.Load(bg)
		fmt.Fprintf(out, "Storage already initialized at: %s (%d appointments)\n", backend.Location(), ctx.Store.Len())
		return nil
	case err == nil:
		ctx.PerformAutomaticBackup(bg)
	case !errors.Is(err, storage.ErrNotFound):
		return errors.Wrap(err, "failed to inspect storage")
	}

	if err := ctx.Store.Replace(bg, nil); err != nil {
		return errors.Wrap(err, "failed to initialize storage")
	}

	fmt.Fprintf(out, "Initialized salonlux storage at: %s\n", backend.Location())
	return nil
}
