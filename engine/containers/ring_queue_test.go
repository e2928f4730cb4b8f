package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	q := NewRingQueue[int](3)
	assert.True(t, q.IsEmpty())

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.True(t, q.IsFull())
	assert.Equal(t, 3, q.Len())
	assert.ErrorIs(t, q.Enqueue(4), ErrQueueFull)

	for i := 1; i <= 3; i++ {
		v, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	_, err := q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueueWrapsAround(t *testing.T) {
	q := NewRingQueue[string](2)
	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	v, _ := q.Dequeue()
	assert.Equal(t, "a", v)

	// write index is back at slot 0
	require.NoError(t, q.Enqueue("c"))
	assert.True(t, q.IsFull())

	v, _ = q.Dequeue()
	assert.Equal(t, "b", v)
	v, _ = q.Dequeue()
	assert.Equal(t, "c", v)
	assert.Equal(t, 0, q.Len())
}

func TestRingQueuePeek(t *testing.T) {
	q := NewRingQueue[int](2)
	_, err := q.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	require.NoError(t, q.Enqueue(7))
	v, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, q.Len())
}
