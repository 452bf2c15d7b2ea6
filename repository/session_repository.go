// file: repository/session_repository.go

package repository

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/redis/go-redis/v9"
)

// refreshTokenPrefix namespaces session keys in the shared Redis instance.
const refreshTokenPrefix = "refreshToken:"

// NewRefreshTokenValue generates an opaque refresh token: 32 random bytes,
// base64url encoded. The value space makes collisions negligible, so token
// uniqueness is never checked against the store.
func NewRefreshTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ISessionRepository defines the contract for refresh session storage.
type ISessionRepository interface {
	Create(ctx context.Context, session *model.RefreshSession) error
	Find(ctx context.Context, token string) (*model.RefreshSession, error)
	Consume(ctx context.Context, token string) (*model.RefreshSession, error)
	Delete(ctx context.Context, token string) error
}

// SessionRepository implements ISessionRepository on top of Redis. The
// store's native TTL is authoritative for expiry; explicit deletes only
// exist to kill a session before its TTL fires (rotation, logout).
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

// Create stores the session under its token with TTL set to the remaining
// validity at write time.
func (r *SessionRepository) Create(ctx context.Context, session *model.RefreshSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh session already expired at creation")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh session: %w", err)
	}

	if err := r.Redis.Set(ctx, refreshTokenPrefix+session.Token, data, ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("subject_id", session.SubjectID).Error("Failed to store refresh session")
		return fmt.Errorf("%w: redis set: %v", common.ErrInfrastructure, err)
	}
	return nil
}

// Find looks up a session without removing it. Returns (nil, nil) when the
// token never existed, expired, or was already deleted.
func (r *SessionRepository) Find(ctx context.Context, token string) (*model.RefreshSession, error) {
	data, err := r.Redis.Get(ctx, refreshTokenPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", common.ErrInfrastructure, err)
	}
	return unmarshalSession(data)
}

// Consume atomically fetches and removes a session in a single GETDEL.
// When two rotation requests race on the same token, Redis guarantees only
// one of them gets the record; the loser sees (nil, nil).
func (r *SessionRepository) Consume(ctx context.Context, token string) (*model.RefreshSession, error) {
	data, err := r.Redis.GetDel(ctx, refreshTokenPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis getdel: %v", common.ErrInfrastructure, err)
	}
	return unmarshalSession(data)
}

// Delete removes a session. Deleting an absent key is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.Redis.Del(ctx, refreshTokenPrefix+token).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", common.ErrInfrastructure, err)
	}
	return nil
}

func unmarshalSession(data []byte) (*model.RefreshSession, error) {
	session := &model.RefreshSession{}
	if err := json.Unmarshal(data, session); err != nil {
		logger.Log.WithError(err).Error("Corrupt refresh session record in store")
		return nil, fmt.Errorf("%w: corrupt session record: %v", common.ErrInfrastructure, err)
	}
	return session, nil
}
