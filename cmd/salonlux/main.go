package main

import (
	"context"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/cli/appointments"
	"github.com/julianstephens/salonlux/internal/cli/backups"
	"github.com/julianstephens/salonlux/internal/cli/system"
	"github.com/julianstephens/salonlux/internal/config"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/errors"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init   system.InitCmd          `cmd:"" help:"Write the config file and initialize storage."`
	Tui    system.TuiCmd           `cmd:"" help:"Launch the interactive booking UI." default:"1"`
	Slots  appointments.SlotsCmd   `cmd:"" help:"Show the availability grid for a day."`
	Book   appointments.BookCmd    `cmd:"" help:"Book a slot."`
	List   appointments.ListCmd    `cmd:"" help:"List appointments by date and time."`
	Cancel appointments.CancelCmd  `cmd:"" help:"Cancel an appointment."`
	Export appointments.ExportCmd  `cmd:"" help:"Export appointments as iCalendar or JSON."`
	Doctor system.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
	Ask    system.AskCmd           `cmd:"" help:"Ask the style advisor."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore appointments from a backup."`
	} `cmd:"" help:"Manage appointment backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show keyring availability and stored secrets."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Salon appointment scheduling"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":         constants.Version,
			"config_path":     constants.DefaultConfigPath,
			"default_service": constants.DefaultService(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		Level:     cfg.LogLevel,
		ConfigDir: filepath.Dir(CLI.Config),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		errors.Fatal(err)
	}

	bg := context.Background()
	backend, err := cli.OpenBackend(bg, cfg)
	if err != nil {
		errors.Fatal(err)
	}
	defer backend.Close()

	store := storage.NewStore(backend)
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		store.Load(bg)
	}

	appCtx := cli.NewContext(cfg, CLI.Config, store)
	err = ctx.Run(appCtx)
	if err != nil {
		backend.Close()
		errors.Fatal(err)
	}
}
