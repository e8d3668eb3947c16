package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdownFiresExactlyOnce(t *testing.T) {
	c := NewCountdown(3)

	assert.False(t, c.Tick())
	assert.Equal(t, 2, c.Remaining())
	assert.False(t, c.Tick())
	assert.True(t, c.Tick())
	assert.Equal(t, 0, c.Remaining())

	// further ticks never re-fire
	assert.False(t, c.Tick())
	assert.False(t, c.Tick())
}

func TestCountdownStopSuppressesExpiry(t *testing.T) {
	c := NewCountdown(2)
	c.Stop()

	assert.False(t, c.Tick())
	assert.False(t, c.Tick())
	assert.False(t, c.Tick())
}

func TestCountdownZeroDuration(t *testing.T) {
	c := NewCountdown(0)
	assert.True(t, c.Tick())
	assert.False(t, c.Tick())

	c = NewCountdown(-5)
	assert.Equal(t, 0, c.Remaining())
}
