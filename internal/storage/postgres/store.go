package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	pq "github.com/lib/pq"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/migration"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Backend keeps key-value entries in the salonlux_kv table of the salonlux
// schema.
type Backend struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Backend {
	return &Backend{connStr: withSearchPath(connStr)}
}

// withSearchPath pins search_path to the application schema unless the
// connection string already sets one.
func withSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}

	if _, ok := dsnParam(connStr, "search_path"); ok {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// dsnParam looks up a key=value pair in a DSN-style connection string.
func dsnParam(connStr, key string) (string, bool) {
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), key) {
			return kv[1], true
		}
	}
	return "", false
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	_, ok := dsnParam(connStr, "sslmode")
	return ok
}

// ValidateConnString checks that connStr parses as a PostgreSQL URI or DSN
// and carries no password. Passwords belong in PGPASSFILE or .pgpass.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, errors.Wrap(ErrInvalidConnectionString, "connection string cannot be empty")
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, errors.Wrapf(ErrInvalidConnectionString, "invalid connection string format: %v", err)
	}

	if isURL(connStr) {
		parsed, err := url.Parse(connStr)
		if err != nil {
			return false, errors.Wrapf(ErrInvalidConnectionString, "failed to parse connection URL: %v", err)
		}
		if _, isSet := parsed.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
		if parsed.Host == "" && parsed.User == nil && (parsed.Path == "" || parsed.Path == "/") {
			return false, errors.Wrap(ErrInvalidConnectionString, "connection URL is incomplete")
		}
		return true, nil
	}

	if _, ok := dsnParam(connStr, "password"); ok {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}

// Open connects, creates the schema and applies pending migrations.
func (b *Backend) Open(ctx context.Context) error {
	if b.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", b.connStr)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(b.connStr) {
			return errors.WithHint(errors.Wrap(err, "failed to connect to database"), "try adding sslmode=disable to your connection string")
		}
		return errors.Wrap(err, "failed to connect to database")
	}

	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		db.Close()
		return errors.Wrap(err, "failed to create schema")
	}
	b.db = db

	if err := b.runMigrations(ctx); err != nil {
		b.db = nil
		db.Close()
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}

func (b *Backend) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, errors.Wrap(err, "failed to access postgres migrations")
	}
	return migration.NewRunner(b.db, subFS, migration.DialectPostgres), nil
}

func (b *Backend) runMigrations(ctx context.Context) error {
	runner, err := b.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Debug(msg, "backend", "postgres")
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
	err = db.QueryRowContext(ctx, "SELECT value FROM salonlux_kv WHERE key = $1", key).Scan(&value)
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
		INSERT INTO salonlux_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value)
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
	if _, err := db.ExecContext(ctx, "DELETE FROM salonlux_kv WHERE key = $1", key); err != nil {
		return errors.Wrap(err, "failed to delete key")
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	if _, err := b.conn(ctx); err != nil {
		return err
	}
	runner, err := b.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion(ctx)
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Location returns a non-sensitive description of the target database.
func (b *Backend) Location() string {
	if isURL(b.connStr) {
		if u, err := url.Parse(b.connStr); err == nil {
			return fmt.Sprintf("postgresql://%s%s", u.Host, u.Path)
		}
		return "postgresql"
	}
	host, _ := dsnParam(b.connStr, "host")
	name, _ := dsnParam(b.connStr, "dbname")
	return fmt.Sprintf("postgresql://%s/%s", host, name)
}
