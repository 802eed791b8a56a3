package keyring

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"

	"github.com/julianstephens/salonlux/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored for a user.
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a keyring entry together with its environment override.
type Secret struct {
	User   string
	EnvVar string
	Label  string
}

var (
	// DatabaseConnection is a full PostgreSQL connection string. Unlike the
	// config file it may carry a password.
	DatabaseConnection = Secret{User: constants.DefaultKeyringUser, EnvVar: "SALONLUX_DB_CONNECTION", Label: "database connection string"}
	// RedisPassword authenticates the redis backend.
	RedisPassword = Secret{User: "redis-password", EnvVar: "SALONLUX_REDIS_PASSWORD", Label: "redis password"}
	// AdvisorAPIKey is the Gemini API key used by the style advisor.
	AdvisorAPIKey = Secret{User: constants.AdvisorKeyringUser, EnvVar: "API_KEY", Label: "advisor API key"}
)

// Secrets lists every known entry, keyed by the name used on the command line.
var Secrets = map[string]Secret{
	"db-connection":  DatabaseConnection,
	"redis-password": RedisPassword,
	"advisor-key":    AdvisorAPIKey,
}

// Get reads the secret from the keyring.
func Get(s Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Mark(errors.Wrapf(err, "failed to read %s", s.Label), ErrKeyringUnavailable)
	}
	return value, nil
}

// Set stores value in the keyring.
func Set(s Secret, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Newf("%s cannot be empty", s.Label)
	}
	if err := keyring.Set(constants.AppName, s.User, value); err != nil {
		return errors.Wrapf(err, "failed to store %s in keyring", s.Label)
	}
	return nil
}

// Delete removes the secret from the keyring.
func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, s.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "failed to delete %s from keyring", s.Label)
	}
	return nil
}

// Resolve returns the environment override if set, otherwise the keyring
// value. A missing secret yields ("", nil); an unavailable keyring is
// reported so callers can log it.
func Resolve(s Secret) (string, error) {
	if v := strings.TrimSpace(os.Getenv(s.EnvVar)); v != "" {
		return v, nil
	}
	v, err := Get(s)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// GetConnectionString retrieves the PostgreSQL connection string.
func GetConnectionString() (string, error) {
	return Get(DatabaseConnection)
}

// SetConnectionString stores the PostgreSQL connection string.
func SetConnectionString(connStr string) error {
	return Set(DatabaseConnection, connStr)
}

// DeleteConnectionString removes the PostgreSQL connection string.
func DeleteConnectionString() error {
	return Delete(DatabaseConnection)
}

// IsAvailable performs a best-effort read to check the OS keyring works.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
