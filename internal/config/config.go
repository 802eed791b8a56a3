package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/salonlux/internal/constants"
)

// EnvPrefix prefixes every environment override, e.g. SALONLUX_BACKEND.
const EnvPrefix = "SALONLUX"

const (
	DefaultDataPath     = "~/.local/share/salonlux"
	DefaultAdvisorModel = "gemini-2.5-flash"
	DefaultLogLevel     = "warn"
)

// Config is the on-disk configuration, overlaid with SALONLUX_* variables.
type Config struct {
	// Backend selects the key-value medium: file, sqlite, postgres or redis.
	Backend constants.BackendKind `yaml:"backend"`

	// DataPath is the directory holding the file/sqlite data, the lock file
	// and backups.
	DataPath string `yaml:"data_path"`

	// PostgresDSN must not carry a password. Use the keyring, the
	// SALONLUX_DB_CONNECTION variable or .pgpass for credentials.
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`

	// RedisURL is a redis:// URL or host:port. The password comes from the
	// keyring or SALONLUX_REDIS_PASSWORD.
	RedisURL string `yaml:"redis_url,omitempty"`

	OpeningHour int `yaml:"opening_hour"`
	ClosingHour int `yaml:"closing_hour"`
	BookingDays int `yaml:"booking_days"`

	FeedbackDelay time.Duration `yaml:"feedback_delay"`

	AdvisorModel string `yaml:"advisor_model"`
	LogLevel     string `yaml:"log_level"`

	// Debug is only set from the environment or the --debug flag.
	Debug bool `yaml:"-"`
}

// envOverrides mirrors Config for envconfig. Pointers distinguish unset
// variables from zero values.
type envOverrides struct {
	Backend       string         `envconfig:"BACKEND"`
	DataPath      string         `envconfig:"DATA_PATH"`
	PostgresDSN   string         `envconfig:"POSTGRES_DSN"`
	RedisURL      string         `envconfig:"REDIS_URL"`
	OpeningHour   *int           `envconfig:"OPENING_HOUR"`
	ClosingHour   *int           `envconfig:"CLOSING_HOUR"`
	BookingDays   *int           `envconfig:"BOOKING_DAYS"`
	FeedbackDelay *time.Duration `envconfig:"FEEDBACK_DELAY"`
	AdvisorModel  string         `envconfig:"ADVISOR_MODEL"`
	LogLevel      string         `envconfig:"LOG_LEVEL"`
	Debug         bool           `envconfig:"DEBUG"`
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		Backend:       constants.BackendFile,
		DataPath:      DefaultDataPath,
		OpeningHour:   constants.DefaultOpeningHour,
		ClosingHour:   constants.DefaultClosingHour,
		BookingDays:   constants.DefaultBookingDays,
		FeedbackDelay: constants.FeedbackDelay,
		AdvisorModel:  DefaultAdvisorModel,
		LogLevel:      DefaultLogLevel,
	}
}

// Normalize fills zero values with defaults so older or partial files still
// load. It never overrides values that are set, even invalid ones; Validate
// reports those.
func (c *Config) Normalize() {
	d := Default()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	c.Backend = constants.BackendKind(strings.ToLower(string(c.Backend)))
	if c.DataPath == "" {
		c.DataPath = d.DataPath
	}
	if c.OpeningHour == 0 && c.ClosingHour == 0 {
		c.OpeningHour = d.OpeningHour
		c.ClosingHour = d.ClosingHour
	}
	if c.BookingDays == 0 {
		c.BookingDays = d.BookingDays
	}
	if c.FeedbackDelay == 0 {
		c.FeedbackDelay = d.FeedbackDelay
	}
	if c.AdvisorModel == "" {
		c.AdvisorModel = d.AdvisorModel
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Backend {
	case constants.BackendFile, constants.BackendSQLite:
	case constants.BackendPostgres:
	case constants.BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return errors.New("redis backend requires redis_url")
		}
	default:
		return errors.Newf("unknown backend %q (expected file, sqlite, postgres or redis)", c.Backend)
	}

	if c.OpeningHour < 0 || c.OpeningHour > 23 {
		return errors.Newf("opening_hour %d out of range 0-23", c.OpeningHour)
	}
	if c.ClosingHour < 1 || c.ClosingHour > 24 {
		return errors.Newf("closing_hour %d out of range 1-24", c.ClosingHour)
	}
	if c.OpeningHour >= c.ClosingHour {
		return errors.Newf("opening_hour (%d) must be before closing_hour (%d)", c.OpeningHour, c.ClosingHour)
	}
	if c.BookingDays < 1 {
		return errors.Newf("booking_days must be at least 1, got %d", c.BookingDays)
	}
	if c.FeedbackDelay < 0 {
		return errors.Newf("feedback_delay must be positive, got %s", c.FeedbackDelay)
	}
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.New("data_path cannot be empty")
	}
	return nil
}

// ApplyEnv overlays SALONLUX_* variables onto c.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(err, "failed to process environment overrides")
	}

	if env.Backend != "" {
		c.Backend = constants.BackendKind(env.Backend)
	}
	if env.DataPath != "" {
		c.DataPath = env.DataPath
	}
	if env.PostgresDSN != "" {
		c.PostgresDSN = env.PostgresDSN
	}
	if env.RedisURL != "" {
		c.RedisURL = env.RedisURL
	}
	if env.OpeningHour != nil {
		c.OpeningHour = *env.OpeningHour
	}
	if env.ClosingHour != nil {
		c.ClosingHour = *env.ClosingHour
	}
	if env.BookingDays != nil {
		c.BookingDays = *env.BookingDays
	}
	if env.FeedbackDelay != nil {
		c.FeedbackDelay = *env.FeedbackDelay
	}
	if env.AdvisorModel != "" {
		c.AdvisorModel = env.AdvisorModel
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.Debug {
		c.Debug = true
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and fills
// defaults. A missing file yields the defaults. Paths are ~-expanded.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if cfg.DataPath, err = ExpandPath(cfg.DataPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with 0600 permissions via temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	tmp, err := os.CreateTemp(dir, ".salonlux-config-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary config file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write config")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync config")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close config")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errors.Wrap(err, "failed to set config permissions")
	}
	return errors.Wrap(os.Rename(tmpName, path), "failed to replace config")
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}

// SQLitePath is the database file used by the sqlite backend.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataPath, constants.AppName+".db")
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
