package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLockClient backs the lock with a plain map so the compare-and-delete
// semantics can be asserted without a redis server.
type fakeLockClient struct {
	values map[string]string
}

func newFakeLockClient() *fakeLockClient {
	return &fakeLockClient{values: make(map[string]string)}
}

func (f *fakeLockClient) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if _, exists := f.values[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLockClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRunLockAcquireAndRelease(t *testing.T) {
	client := newFakeLockClient()
	lock := NewRunLock(client, time.Minute)

	release, err := lock.Acquire(context.Background(), "data/suppliers_data.json", "run-1")
	require.NoError(t, err)

	// Second run against the same artifact must be rejected.
	_, err = lock.Acquire(context.Background(), "data/suppliers_data.json", "run-2")
	assert.ErrorIs(t, err, ErrLocked)

	// A different artifact path is an independent lock.
	_, err = lock.Acquire(context.Background(), "data/other.json", "run-2")
	require.NoError(t, err)

	release()
	_, err = lock.Acquire(context.Background(), "data/suppliers_data.json", "run-2")
	assert.NoError(t, err, "released lock must be acquirable again")
}

func TestRunLockReleaseOnlyRemovesOwnLock(t *testing.T) {
	client := newFakeLockClient()
	lock := NewRunLock(client, time.Minute)

	release, err := lock.Acquire(context.Background(), "data/suppliers_data.json", "run-1")
	require.NoError(t, err)

	// Simulate expiry followed by another run taking the lock over.
	key := lockKey("data/suppliers_data.json")
	client.values[key] = "run-2"

	release()
	assert.Equal(t, "run-2", client.values[key], "release must not remove a lock it no longer owns")
}
