package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierPoolReusesReleasedSlots(t *testing.T) {
	p := NewIdentifierPool(4)
	a, b, c := "a", "b", "c"

	assert.Equal(t, uint32(0), p.Acquire(a))
	assert.Equal(t, uint32(1), p.Acquire(b))
	assert.Equal(t, uint32(2), p.Acquire(c))
	assert.Equal(t, 3, p.InUse())

	require.NoError(t, p.Release(1))
	assert.Nil(t, p.Owner(1))
	assert.Equal(t, 2, p.InUse())

	d := "d"
	assert.Equal(t, uint32(1), p.Acquire(d))
	assert.Equal(t, "d", p.Owner(1))
}

func TestIdentifierPoolReleaseErrors(t *testing.T) {
	p := NewIdentifierPool(1)
	assert.Error(t, p.Release(0))

	id := p.Acquire("x")
	require.NoError(t, p.Release(id))
	assert.Error(t, p.Release(id))
	assert.Nil(t, p.Owner(42))
}
