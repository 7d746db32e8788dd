package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked means another run currently owns the artifact path.
var ErrLocked = errors.New("artifact path is locked by another run")

// LockClient is the subset of redis used for run locking (narrowed for
// testing).
type LockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RunLock serializes search runs per artifact path. The store itself does no
// locking, so two runs writing the same artifact would race without this.
type RunLock struct {
	client LockClient
	ttl    time.Duration
}

func NewRunLock(client LockClient, ttl time.Duration) *RunLock {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &RunLock{client: client, ttl: ttl}
}

// Acquire takes the lock for artifactPath on behalf of runID. The returned
// release function is safe to defer; it only removes the lock if this run
// still owns it.
func (l *RunLock) Acquire(ctx context.Context, artifactPath, runID string) (func(), error) {
	key := lockKey(artifactPath)

	ok, err := l.client.SetNX(ctx, key, runID, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, artifactPath)
	}

	release := func() {
		// Compare-and-delete so an expired lock taken over by another
		// run is never released from here.
		script := `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.client.Eval(releaseCtx, script, []string{key}, runID)
	}
	return release, nil
}

func lockKey(artifactPath string) string {
	return "supplier-scout:run-lock:" + artifactPath
}
