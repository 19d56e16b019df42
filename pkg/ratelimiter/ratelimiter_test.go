package ratelimiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTakeTokenDrainsBucket(t *testing.T) {
	tb := NewTokenBucket(3, 1)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.TakeToken(), "token %d should be available", i)
	}
	assert.False(t, tb.TakeToken(), "bucket should be empty")
}

func TestInvalidParametersClamped(t *testing.T) {
	tb := NewTokenBucket(0, -1)

	assert.True(t, tb.TakeToken())
	assert.False(t, tb.TakeToken())
}

func TestWaitReturnsWhenTokenAvailable(t *testing.T) {
	tb := NewTokenBucket(1, 1)

	tb.Wait()
	assert.False(t, tb.TakeToken())
}
