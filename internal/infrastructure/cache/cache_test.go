package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/support-analytics-backend/internal/core/mocks"
	"github.com/lorrc/support-analytics-backend/internal/infrastructure/cache"
)

func TestTTLCache_GetOrCompute(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("producer invoked once within TTL", func(t *testing.T) {
		clk := mocks.NewFixedClock(start)
		c := cache.NewTTLCache(5*time.Minute, clk, nil)

		calls := 0
		producer := func(context.Context) (any, error) {
			calls++
			return "result", nil
		}

		first, err := c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)
		assert.Equal(t, "result", first)

		clk.Advance(4 * time.Minute)

		second, err := c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)
		assert.Equal(t, "result", second)
		assert.Equal(t, 1, calls)
	})

	t.Run("producer invoked again after TTL expiry", func(t *testing.T) {
		clk := mocks.NewFixedClock(start)
		c := cache.NewTTLCache(5*time.Minute, clk, nil)

		calls := 0
		producer := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		_, err := c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)

		// Entries expire strictly after the TTL: age == TTL is expired.
		clk.Advance(5 * time.Minute)

		value, err := c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, value)
	})

	t.Run("keys are independent", func(t *testing.T) {
		clk := mocks.NewFixedClock(start)
		c := cache.NewTTLCache(5*time.Minute, clk, nil)

		for _, key := range []string{"a", "b", "c"} {
			key := key
			value, err := c.GetOrCompute(ctx, key, func(context.Context) (any, error) {
				return key + "-value", nil
			})
			require.NoError(t, err)
			assert.Equal(t, key+"-value", value)
		}
		assert.Equal(t, 3, c.Len())
	})

	t.Run("producer errors are not cached", func(t *testing.T) {
		clk := mocks.NewFixedClock(start)
		c := cache.NewTTLCache(5*time.Minute, clk, nil)

		boom := errors.New("warehouse down")
		calls := 0

		_, err := c.GetOrCompute(ctx, "key", func(context.Context) (any, error) {
			calls++
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.Len())

		// Next access retries immediately, no TTL wait needed.
		value, err := c.GetOrCompute(ctx, "key", func(context.Context) (any, error) {
			calls++
			return "recovered", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "recovered", value)
		assert.Equal(t, 2, calls)
	})

	t.Run("expired entry is replaced with fresh timestamp", func(t *testing.T) {
		clk := mocks.NewFixedClock(start)
		c := cache.NewTTLCache(5*time.Minute, clk, nil)

		calls := 0
		producer := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		_, err := c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)

		clk.Advance(6 * time.Minute)
		_, err = c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)

		// The refill restarts the TTL window.
		clk.Advance(4 * time.Minute)
		value, err := c.GetOrCompute(ctx, "key", producer)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, value)
	})
}
