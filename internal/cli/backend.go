package cli

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/config"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/keyring"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/internal/storage/file"
	"github.com/julianstephens/salonlux/internal/storage/postgres"
	"github.com/julianstephens/salonlux/internal/storage/redis"
	"github.com/julianstephens/salonlux/internal/storage/sqlite"
)

// resolveSecret is replaced in tests.
var resolveSecret = keyring.Resolve

// OpenBackend connects the backend selected by cfg.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.BackendTimeout)
	defer cancel()

	switch cfg.Backend {
	case constants.BackendFile:
		return file.New(cfg.DataPath), nil

	case constants.BackendSQLite:
		b := sqlite.New(cfg.SQLitePath())
		if err := b.Open(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite backend")
		}
		return b, nil

	case constants.BackendPostgres:
		connStr, err := PostgresConnString(cfg)
		if err != nil {
			return nil, err
		}
		b := postgres.New(connStr)
		if err := b.Open(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to open postgres backend")
		}
		return b, nil

	case constants.BackendRedis:
		password, err := resolveSecret(keyring.RedisPassword)
		if err != nil {
			logger.Warn("Could not read redis password from keyring", "error", err)
		}
		b, err := redis.New(cfg.RedisURL, password)
		if err != nil {
			return nil, err
		}
		if err := b.Ping(ctx); err != nil {
			b.Close()
			return nil, errors.Wrap(err, "failed to open redis backend")
		}
		return b, nil

	default:
		return nil, errors.Newf("unknown backend %q", cfg.Backend)
	}
}

// PostgresConnString picks the connection string for the postgres backend. A
// keyring or SALONLUX_DB_CONNECTION value wins and may carry a password; the
// config file DSN may not.
func PostgresConnString(cfg *config.Config) (string, error) {
	override, err := resolveSecret(keyring.DatabaseConnection)
	if err != nil {
		logger.Debug("Keyring lookup failed, using config DSN", "error", err)
	}
	if override != "" {
		if _, verr := postgres.ValidateConnString(override); verr != nil && !errors.Is(verr, postgres.ErrEmbeddedCredentials) {
			return "", verr
		}
		return override, nil
	}

	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		return "", errors.WithHint(
			errors.New("postgres backend has no connection string"),
			"set postgres_dsn in the config file or run 'salonlux keyring set db-connection <dsn>'",
		)
	}
	if _, err := postgres.ValidateConnString(dsn); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return "", errors.WithHint(err,
				"store the full connection string with 'salonlux keyring set db-connection', export SALONLUX_DB_CONNECTION, or use .pgpass")
		}
		return "", err
	}
	return dsn, nil
}
