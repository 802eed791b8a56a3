package system

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	l, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer cli.ReleaseLock(l)

	bg := context.Background()
	ctx.Store.Load(bg)
	ctx.PerformAutomaticBackup(bg)

	p := tea.NewProgram(tui.NewModel(ctx.Store, ctx.Scheduler, ctx.Config.FeedbackDelay), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "interactive session failed")
	}
	return nil
}
