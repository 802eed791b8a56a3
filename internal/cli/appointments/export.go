package appointments

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/export"
	"github.com/julianstephens/salonlux/internal/logger"
)

type ExportCmd struct {
	Format string `help:"Output format: ics or json." default:"ics" enum:"ics,json"`
	Out    string `help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var w io.Writer = ctx.Stdout()
	if c.Out != "" {
		f, err := os.OpenFile(c.Out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return errors.Wrap(err, "failed to create export file")
		}
		defer f.Close()
		w = f
	}

	res, err := export.Write(w, format, ctx.Store.All(), time.Local, ctx.Clock())
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		logger.Warn("Skipped malformed appointments during export", "count", res.Skipped)
	}
	if c.Out != "" {
		fmt.Fprintf(ctx.Stdout(), "✓ Exported %d appointment(s) to %s\n", res.Exported, c.Out)
		if res.Skipped > 0 {
			fmt.Fprintf(ctx.Stdout(), "  Skipped %d malformed record(s)\n", res.Skipped)
		}
	}
	return nil
}
