// file: model/session.go

package model

import "time"

// RefreshSession is the server-tracked state behind a refresh token. The
// token value itself is an opaque random string; Redis TTL is the primary
// expiry mechanism and Revoked is the explicit kill switch set when a
// session is consumed before its TTL fires.
type RefreshSession struct {
	Token     string    `json:"token"`
	SubjectID string    `json:"subject_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// Live reports whether the session can still be rotated at the given
// instant. A session expiring exactly now is dead.
func (s *RefreshSession) Live(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(now)
}
