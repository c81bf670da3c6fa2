package receiptstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bitbucket.org/rewixxcloud/jobs_client/config"
	"github.com/bsm/redislock"
)

// KV is the persistence seam for the store. The Redis implementation is the
// production one; the memory implementation backs tests and environments
// with no local Redis.
type KV interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, obj interface{}) error
	Delete(ctx context.Context, key string) error
	// Lock serializes read-modify-write sequences on one key. The returned
	// func releases the lock and must always be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type redisKV struct{}

func NewRedisKV() KV {
	return redisKV{}
}

func (redisKV) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return config.GetRedisObject(key, dest)
}

func (redisKV) Set(ctx context.Context, key string, obj interface{}) error {
	// receipts have no TTL: the record lives until cleared
	return config.SetRedisObject(key, obj, 0)
}

func (redisKV) Delete(ctx context.Context, key string) error {
	return config.RemoveRedisKey(key)
}

func (redisKV) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	lock, err := locker.Obtain(ctx, "lock:"+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = lock.Release(context.Background()) }, nil
}

// memoryKV is a process-local KV with the same semantics, used by tests.
type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryKV() KV {
	return &memoryKV{data: map[string][]byte{}}
}

func (m *memoryKV) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memoryKV) Set(ctx context.Context, key string, obj interface{}) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryKV) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	// single-process store: the struct mutex already serializes access
	return func() {}, nil
}
