package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayBounds(t *testing.T) {
	initial := 2 * time.Second
	for attempt := 1; attempt <= 4; attempt++ {
		base := initial << (attempt - 1)
		for i := 0; i < 20; i++ {
			d := Delay(attempt, initial)
			assert.GreaterOrEqual(t, d, base, "attempt %d below base", attempt)
			assert.LessOrEqual(t, d, base+base/10+time.Nanosecond, "attempt %d above jitter cap", attempt)
		}
	}
}

func TestDelayDoubles(t *testing.T) {
	initial := 2 * time.Second
	assert.GreaterOrEqual(t, Delay(2, initial), 4*time.Second)
	assert.GreaterOrEqual(t, Delay(3, initial), 8*time.Second)
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 4, time.Millisecond, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 4, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), 4, time.Millisecond, func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, 4, time.Hour, func() error {
		calls++
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
