package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](r *Ring[T]) []T {
	var out []T
	for _, v := range r.All() {
		out = append(out, v)
	}
	return out
}

func TestRingFIFO(t *testing.T) {
	r := NewRing[int](3)
	require.NoError(t, r.Push(1))
	require.NoError(t, r.Push(2))
	require.NoError(t, r.Push(3))
	assert.True(t, r.IsFull())
	assert.ErrorIs(t, r.Push(4), ErrRingFull)

	v, err := r.Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, r.Push(4))
	assert.Equal(t, []int{2, 3, 4}, collect(r))

	head, ok := r.Peek()
	assert.True(t, ok)
	assert.Equal(t, 2, head)

	tail, ok := r.At(2)
	assert.True(t, ok)
	assert.Equal(t, 4, tail)
	_, ok = r.At(3)
	assert.False(t, ok)

	assert.Equal(t, []int{2, 3, 4}, r.Drain())
	assert.True(t, r.IsEmpty())
	_, err = r.Pop()
	assert.ErrorIs(t, err, ErrRingEmpty)
}

func TestRingRotateKeepsLength(t *testing.T) {
	r := NewRing[string](3)
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, r.Push(s))
	}
	for i, next := range []string{"d", "e", "f", "g"} {
		old, err := r.Rotate(next)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}[i], old)
		assert.Equal(t, 3, r.Len())
	}
	assert.Equal(t, []string{"e", "f", "g"}, collect(r))
}

func TestRingRotatePartial(t *testing.T) {
	r := NewRing[int](4)
	require.NoError(t, r.Push(1))
	require.NoError(t, r.Push(2))

	old, err := r.Rotate(3)
	require.NoError(t, err)
	assert.Equal(t, 1, old)
	assert.Equal(t, []int{2, 3}, collect(r))

	_, err = NewRing[int](2).Rotate(1)
	assert.ErrorIs(t, err, ErrRingEmpty)
}

func TestRingZeroCapacity(t *testing.T) {
	r := NewRing[int](0)
	assert.ErrorIs(t, r.Push(1), ErrRingFull)
	assert.Equal(t, 0, r.Cap())
}
