package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfe-etl/internal/logging"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Logger: logging.NewMockLogger()}

	calls := 0
	err := p.Do(context.Background(), "noop", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Logger: logging.NewMockLogger()}

	calls := 0
	err := p.Do(context.Background(), "flaky", func() error {
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
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Logger: logging.NewMockLogger()}

	boom := errors.New("still broken")
	calls := 0
	err := p.Do(context.Background(), "broken", func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	fatal := errors.New("bad request")
	p := Policy{
		MaxAttempts: 5,
		Delay:       time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
		Logger:      logging.NewMockLogger(),
	}

	calls := 0
	err := p.Do(context.Background(), "fatal", func() error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 10, Delay: time.Hour, Logger: logging.NewMockLogger()}

	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Do(ctx, "slow", func() error {
			calls++
			return errors.New("transient")
		})
	}()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoLogsEachFailedAttempt(t *testing.T) {
	mock := logging.NewMockLogger()
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Logger: mock}

	_ = p.Do(context.Background(), "broken", func() error {
		return errors.New("transient")
	})

	// The final attempt fails without a retry, so two warnings are expected.
	assert.Len(t, mock.MessagesByLevel("WARN"), 2)
}
