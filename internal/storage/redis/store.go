package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/storage"
)

// KeyPrefix namespaces every entry written by salonlux.
const KeyPrefix = constants.AppName + ":"

// Backend stores each key as a plain string value under KeyPrefix.
type Backend struct {
	client *goredis.Client
	addr   string
	db     int
}

// New builds a backend from a redis:// or rediss:// URL. password, when set,
// overrides any password in the URL.
func New(rawURL, password string) (*Backend, error) {
	opts, err := ParseOptions(rawURL, password)
	if err != nil {
		return nil, err
	}
	return NewWithClient(goredis.NewClient(opts)), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client) *Backend {
	opts := client.Options()
	return &Backend{client: client, addr: opts.Addr, db: opts.DB}
}

// ParseOptions parses a Redis URL. A bare host:port is accepted as well.
func ParseOptions(rawURL, password string) (*goredis.Options, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "redis://" + rawURL
	}

	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis URL")
	}
	if password != "" {
		opts.Password = password
	}
	return opts, nil
}

func namespaced(key string) string {
	return KeyPrefix + key
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, namespaced(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, errors.Wrapf(storage.ErrNotFound, "key %s", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read key")
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, namespaced(key), value, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to write key")
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, namespaced(key)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete key")
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return errors.Wrapf(err, "failed to reach redis at %s", b.addr)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) Location() string {
	return fmt.Sprintf("redis://%s/%d", b.addr, b.db)
}
