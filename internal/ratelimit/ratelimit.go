package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer spaces out page interactions with jittered delays so the traffic
// pattern stays human-shaped.
type Pacer interface {
	Wait(ctx context.Context) error
	SetBounds(min, max time.Duration)
}

type RandomPacer struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewRandomPacer(minDelay, maxDelay time.Duration) *RandomPacer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RandomPacer{
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

func (p *RandomPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.lastAction)
	delay := p.nextDelay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	p.lastAction = time.Now()
	return nil
}

func (p *RandomPacer) SetBounds(min, max time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.minDelay = min
	p.maxDelay = max
	if p.maxDelay < p.minDelay {
		p.maxDelay = p.minDelay
	}
}

func (p *RandomPacer) nextDelay() time.Duration {
	if p.maxDelay == p.minDelay {
		return p.minDelay
	}
	jitter := time.Duration(rand.Int63n(int64(p.maxDelay - p.minDelay)))
	return p.minDelay + jitter
}

// NoopPacer disables pacing. Used by tests and the offline snapshot path.
type NoopPacer struct{}

func (NoopPacer) Wait(context.Context) error             { return nil }
func (NoopPacer) SetBounds(time.Duration, time.Duration) {}
