package concurrent

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	err := ForEach(context.Background(), slices.Values([]int{1, 2, 3, 4, 5, 6, 7, 8}), 3,
		func(context.Context, int) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	err := ForEach(context.Background(), slices.Values([]int{1, 2, 3}), 1,
		func(_ context.Context, v int) error {
			calls.Add(1)
			if v == 1 {
				return boom
			}
			return nil
		})
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, calls.Load())
}

func TestMapKeepsOrder(t *testing.T) {
	out, err := Map(context.Background(), []int{3, 1, 2}, 0, func(_ context.Context, v int) (int, error) {
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{30, 10, 20}, out)

	_, err = Map(context.Background(), []int{1}, 1, func(context.Context, int) (int, error) {
		return 0, errors.New("nope")
	})
	assert.Error(t, err)
}
