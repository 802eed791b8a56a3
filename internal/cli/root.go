package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/backup"
	"github.com/julianstephens/salonlux/internal/config"
	"github.com/julianstephens/salonlux/internal/lock"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/scheduler"
	"github.com/julianstephens/salonlux/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Store      *storage.Store
	Scheduler  *scheduler.Scheduler
	Config     *config.Config
	ConfigPath string

	// Out and In default to the process stdio.
	Out io.Writer
	In  io.Reader
	// Now defaults to time.Now.
	Now func() time.Time
	// Confirm asks a yes/no question. It defaults to a huh confirm prompt.
	Confirm func(title string) (bool, error)
}

// NewContext builds a Context for cfg around store.
func NewContext(cfg *config.Config, configPath string, store *storage.Store) *Context {
	return &Context{
		Store:      store,
		Scheduler:  scheduler.New(cfg.OpeningHour, cfg.ClosingHour, cfg.BookingDays),
		Config:     cfg,
		ConfigPath: configPath,
	}
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Ask runs the Confirm hook, falling back to an interactive prompt.
func (c *Context) Ask(title string) (bool, error) {
	if c.Confirm != nil {
		return c.Confirm(title)
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Sim").
		Negative("Não").
		Value(&ok).
		Run()
	return ok, err
}

// DataDir is where the lock file and backups live for every backend.
func (c *Context) DataDir() string {
	return c.Config.DataPath
}

// BackupManager returns a manager for the store's snapshot key.
func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Store.Backend(), c.Store.Key(), c.DataDir())
}

// AcquireLock takes the single-writer lock for the data directory.
func (c *Context) AcquireLock() (*lock.Lock, error) {
	return lock.Acquire(c.DataDir())
}

// ReleaseLock releases l and logs failures.
func ReleaseLock(l *lock.Lock) {
	if err := l.Release(); err != nil {
		logger.Warn("Failed to release lock", "error", err)
	}
}

// PerformAutomaticBackup creates a backup and only logs failures.
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, err := c.BackupManager().CreateBackup(ctx); err != nil {
		if errors.Is(err, backup.ErrNothingToBackup) {
			logger.Debug("Skipping automatic backup, no snapshot yet")
			return
		}
		logger.Warn("Automatic backup failed", "error", err)
	}
}
