package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", func() error {
		calls++
		return errors.New("always")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("expired")
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", func() error {
		calls++
		return Permanent(sentinel)
	}, fastConfig())

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}
