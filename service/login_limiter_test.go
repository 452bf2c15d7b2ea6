package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_BurstThenThrottle(t *testing.T) {
	limiter := NewLoginLimiter(0, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("a@x.com"), "attempt %d should be within burst", i)
	}
	assert.False(t, limiter.Allow("a@x.com"))
}

func TestLoginLimiter_PerAccountIsolation(t *testing.T) {
	limiter := NewLoginLimiter(0, 1)

	assert.True(t, limiter.Allow("a@x.com"))
	assert.False(t, limiter.Allow("a@x.com"))

	// A different account has its own budget.
	assert.True(t, limiter.Allow("b@x.com"))
}

func TestLoginLimiter_BoundedTracking(t *testing.T) {
	limiter := NewLoginLimiter(60, 1)

	for i := 0; i < maxTrackedAccounts+100; i++ {
		limiter.Allow(fmt.Sprintf("user%d@x.com", i))
	}

	limiter.mu.Lock()
	tracked := len(limiter.accounts)
	limiter.mu.Unlock()
	assert.LessOrEqual(t, tracked, maxTrackedAccounts)
	assert.Greater(t, tracked, 0)
}
