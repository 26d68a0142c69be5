package ydlidar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteQueuePushAndExtractPreservesOrder(t *testing.T) {
	q := newByteQueue(8)

	for i := byte(0); i < 5; i++ {
		require.True(t, q.push(i))
	}
	require.Equal(t, 5, q.size())

	dst := make([]byte, 5)
	require.True(t, q.extract(dst, 5))
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, dst)
	assert.Equal(t, 0, q.size())
}

func TestByteQueuePushSliceStrictMargin(t *testing.T) {
	q := newByteQueue(4)

	// count(0) + size(4) is not < capacity(4): rejected, one-slot margin
	// preserved per the source's strict inequality (§9).
	assert.False(t, q.pushSlice([]byte{1, 2, 3, 4}))
	assert.Equal(t, 0, q.size())

	assert.True(t, q.pushSlice([]byte{1, 2, 3}))
	assert.Equal(t, 3, q.size())
}

func TestByteQueuePushSingleByteUsesNonStrictCapacity(t *testing.T) {
	q := newByteQueue(2)

	require.True(t, q.push(1))
	require.True(t, q.push(2))
	// queue is now full (count == capacity): further pushes are rejected.
	assert.False(t, q.push(3))
	assert.Equal(t, 2, q.size())
}

func TestByteQueueWrapAroundExtractionMatchesLogicalContents(t *testing.T) {
	q := newByteQueue(4)
	require.True(t, q.pushSlice([]byte{1, 2, 3}))

	dst := make([]byte, 2)
	require.True(t, q.extract(dst, 2))
	assert.Equal(t, []byte{1, 2}, dst)
	assert.Equal(t, 1, q.size())

	// head has advanced to index 2 and tail sits at the last slot; push
	// two more bytes so the tail wraps past the end of the backing array.
	require.True(t, q.push(4))
	require.True(t, q.push(5))
	assert.Equal(t, 3, q.size())

	dst = make([]byte, 3)
	require.True(t, q.extract(dst, 3))
	assert.Equal(t, []byte{3, 4, 5}, dst)
}

func TestByteQueueDropIsNoOpBeyondSize(t *testing.T) {
	q := newByteQueue(4)
	require.True(t, q.push(1))

	q.drop(5)
	assert.Equal(t, 1, q.size())

	q.drop(1)
	assert.Equal(t, 0, q.size())
}

func TestByteQueueExtractFailsWhenNotEnoughData(t *testing.T) {
	q := newByteQueue(4)
	require.True(t, q.push(1))

	dst := make([]byte, 2)
	assert.False(t, q.extract(dst, 2))
	assert.Equal(t, 1, q.size())
}

func TestByteQueueClearResetsToEmpty(t *testing.T) {
	q := newByteQueue(4)
	require.True(t, q.pushSlice([]byte{1, 2}))

	q.clear()
	assert.True(t, q.isEmpty())
	assert.Equal(t, 0, q.size())
}

func TestByteQueuePeekUndefinedBeyondSizeDoesNotPanic(t *testing.T) {
	q := newByteQueue(4)
	require.True(t, q.push(9))

	assert.NotPanics(t, func() {
		_ = q.peek(3)
	})
}

func TestByteQueueIsFullAndCapacity(t *testing.T) {
	q := newByteQueue(3)
	assert.Equal(t, 3, q.Capacity())
	assert.False(t, q.isFull())

	require.True(t, q.push(1))
	require.True(t, q.push(2))
	require.True(t, q.push(3))
	assert.True(t, q.isFull())
}
