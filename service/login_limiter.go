// file: service/login_limiter.go

package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedAccounts bounds the limiter map so an attacker cycling through
// emails cannot grow it without limit.
const maxTrackedAccounts = 10000

// LoginLimiter throttles credential checks per email to slow down online
// password guessing. State is per-process; it is a brake, not a lockout.
type LoginLimiter struct {
	mu       sync.Mutex
	accounts map[string]*accountLimiter
	limit    rate.Limit
	burst    int
}

type accountLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	return &LoginLimiter{
		accounts: make(map[string]*accountLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether a login attempt for the email may proceed now.
func (l *LoginLimiter) Allow(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.accounts[email]
	if !ok {
		if len(l.accounts) >= maxTrackedAccounts {
			l.sweep()
		}
		if len(l.accounts) >= maxTrackedAccounts {
			// Still full after dropping idle entries: start over rather
			// than grow without bound.
			l.accounts = make(map[string]*accountLimiter)
		}
		entry = &accountLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.accounts[email] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// sweep drops entries idle for over an hour. Called with the lock held.
func (l *LoginLimiter) sweep() {
	cutoff := time.Now().Add(-time.Hour)
	for email, entry := range l.accounts {
		if entry.lastSeen.Before(cutoff) {
			delete(l.accounts, email)
		}
	}
}
