package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel-booking/utils"
)

// RedisStore keeps each collection as a hash under doc:<path> and signals
// changes over pub/sub so subscribers can re-read the full snapshot.
type RedisStore struct {
	client *redis.Client

	// newKey generates Append sub-keys; overridable in tests.
	newKey func() string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		newKey: newChildKey,
	}
}

// newChildKey returns a time-prefixed child key so lexicographic order
// follows insertion order, like the push keys of the hosted stores this
// mirrors.
func newChildKey() string {
	code, err := utils.GenerateCode(4)
	if err != nil {
		code = fmt.Sprintf("%08X", time.Now().UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("%013d-%s", time.Now().UnixMilli(), code)
}

func docKey(path string) string {
	return "doc:" + path
}

func changeChannel(path string) string {
	return "docs:" + path
}

func (r *RedisStore) Write(ctx context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	if err := r.client.Set(ctx, docKey(path), string(data), 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	r.signal(ctx, path)
	return nil
}

func (r *RedisStore) Append(ctx context.Context, path string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", path, err)
	}

	key := r.newKey()
	if err := r.client.HSet(ctx, docKey(path), key, string(data)).Err(); err != nil {
		return "", fmt.Errorf("append %s: %w", path, err)
	}

	r.signal(ctx, path)
	return key, nil
}

func (r *RedisStore) SetChild(ctx context.Context, path, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", path, key, err)
	}

	if err := r.client.HSet(ctx, docKey(path), key, string(data)).Err(); err != nil {
		return fmt.Errorf("set %s/%s: %w", path, key, err)
	}

	r.signal(ctx, path)
	return nil
}

func (r *RedisStore) Collection(ctx context.Context, path string) (Snapshot, error) {
	entries, err := r.client.HGetAll(ctx, docKey(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	snapshot := make(Snapshot, len(entries))
	for key, raw := range entries {
		snapshot[key] = json.RawMessage(raw)
	}
	return snapshot, nil
}

func (r *RedisStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (Unsubscribe, error) {
	ps := r.client.Subscribe(ctx, changeChannel(path))

	// Force the subscription onto the wire before the initial snapshot so
	// no change between the two is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	snapshot, err := r.Collection(ctx, path)
	if err != nil {
		ps.Close()
		return nil, err
	}
	fn(snapshot)

	// The subscription outlives the caller's context; its lifetime is the
	// returned unsubscribe. Refresh reads must not die with a request scope.
	readCtx := context.WithoutCancel(ctx)

	go func() {
		for range ps.Channel() {
			snapshot, err := r.Collection(readCtx, path)
			if err != nil {
				log.Printf("Error refreshing %s after change signal: %v", path, err)
				continue
			}
			fn(snapshot)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				log.Printf("Error closing subscription for %s: %v", path, err)
			}
		})
	}, nil
}

func (r *RedisStore) signal(ctx context.Context, path string) {
	if err := r.client.Publish(ctx, changeChannel(path), "changed").Err(); err != nil {
		log.Printf("Error signalling change on %s: %v", path, err)
	}
}
