package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPacerWaitEnforcesMinimumGap(t *testing.T) {
	p := NewRandomPacer(30*time.Millisecond, 30*time.Millisecond)

	require.NoError(t, p.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestRandomPacerWaitHonorsCancellation(t *testing.T) {
	p := NewRandomPacer(time.Minute, time.Minute)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRandomPacerSwappedBounds(t *testing.T) {
	p := NewRandomPacer(10*time.Millisecond, 2*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, p.nextDelay())

	p.SetBounds(20*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, p.nextDelay())
}

func TestNoopPacer(t *testing.T) {
	var p Pacer = NoopPacer{}
	assert.NoError(t, p.Wait(context.Background()))
}
