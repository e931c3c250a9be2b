package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Denylist remembers revoked token ids until they would have expired anyway.
type Denylist interface {
	Add(ctx context.Context, id string, ttl time.Duration) error
	Contains(ctx context.Context, id string) (bool, error)
}

// MemoryDenylist keeps revocations in process memory.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Add(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for key, until := range d.entries {
		if !now.Before(until) {
			delete(d.entries, key)
		}
	}
	d.entries[id] = now.Add(ttl)
	return nil
}

func (d *MemoryDenylist) Contains(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.entries[id]
	return ok && d.now().Before(until), nil
}

// RedisDenylist shares revocations between server instances.
type RedisDenylist struct {
	client *redis.Client
	prefix string
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: "taskit:revoked:"}
}

// DialRedisDenylist connects to redis and checks it answers before handing
// the denylist out. The caller owns the connection and must Close it.
func DialRedisDenylist(ctx context.Context, opts *redis.Options) (*RedisDenylist, error) {
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redis %s unreachable", opts.Addr)
	}
	return NewRedisDenylist(client), nil
}

func (d *RedisDenylist) Close() error {
	return d.client.Close()
}

func (d *RedisDenylist) Add(ctx context.Context, id string, ttl time.Duration) error {
	return d.client.Set(ctx, d.prefix+id, 1, ttl).Err()
}

func (d *RedisDenylist) Contains(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
