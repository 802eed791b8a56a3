package sqlite

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/migration"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/migrations"
)

// Backend keeps key-value entries in the salonlux_kv table of a SQLite file.
type Backend struct {
	path string
	db   *sql.DB
}

func New(path string) *Backend {
	return &Backend{path: path}
}

// Open creates the parent directory, opens the database and applies any
// pending migrations.
func (b *Backend) Open(ctx context.Context) error {
	if b.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}

	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	// modernc's driver serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	b.db = db

	if err := b.runMigrations(ctx); err != nil {
		b.db = nil
		db.Close()
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}

func (b *Backend) runMigrations(ctx context.Context) error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return errors.Wrap(err, "failed to access sqlite migrations")
	}

	runner := migration.NewRunner(b.db, subFS, migration.DialectSQLite)
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Debug(msg, "backend", "sqlite")
	})
	return err
}

func (b *Backend) conn(ctx context.Context) (*sql.DB, error) {
	if err := b.Open(ctx); err != nil {
		return nil, err
	}
	return b.db, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := b.conn(ctx)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = db.QueryRowContext(ctx, "SELECT value FROM salonlux_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(storage.ErrNotFound, "key %s", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read key")
	}
	return value, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	db, err := b.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO salonlux_kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return errors.Wrap(err, "failed to write key")
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	db, err := b.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM salonlux_kv WHERE key = ?", key); err != nil {
		return errors.Wrap(err, "failed to delete key")
	}
	return nil
}

// Ping opens the database if needed and checks the schema version.
func (b *Backend) Ping(ctx context.Context) error {
	db, err := b.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to reach database")
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return errors.Wrap(err, "failed to access sqlite migrations")
	}
	return migration.NewRunner(db, subFS, migration.DialectSQLite).ValidateVersion(ctx)
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *Backend) Location() string {
	return b.path
}
