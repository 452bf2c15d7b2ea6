// file: service/session_service.go

package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
)

// SessionService orchestrates the token lifecycle: login issues a fresh
// access/refresh pair, refresh rotates a pair on presentation of a live
// refresh token, logout kills a refresh session early.
//
// Access tokens are self-contained and cannot be revoked before their
// natural expiry; only refresh sessions are server-tracked. Keep access
// TTLs short for that reason.
type SessionService struct {
	codec     *TokenCodec
	sessions  repository.ISessionRepository
	directory repository.IUserDirectory
	limiter   *LoginLimiter

	accessTTL  time.Duration
	refreshTTL time.Duration

	storeTimeout     time.Duration
	directoryTimeout time.Duration

	now func() time.Time
}

func NewSessionService(
	codec *TokenCodec,
	sessions repository.ISessionRepository,
	directory repository.IUserDirectory,
	limiter *LoginLimiter,
	accessTTL, refreshTTL, storeTimeout, directoryTimeout time.Duration,
) *SessionService {
	return &SessionService{
		codec:            codec,
		sessions:         sessions,
		directory:        directory,
		limiter:          limiter,
		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		storeTimeout:     storeTimeout,
		directoryTimeout: directoryTimeout,
		now:              time.Now,
	}
}

// Login verifies credentials against the user directory and issues a new
// token pair. Unknown user and wrong password produce the identical
// rejection so the response does not leak which emails exist.
func (s *SessionService) Login(ctx context.Context, email, password string) (*model.TokenPair, *common.AppError) {
	if s.limiter != nil && !s.limiter.Allow(email) {
		return nil, common.NewAppErrorWithReason(http.StatusTooManyRequests,
			"Too many login attempts, slow down", common.ReasonTooManyAttempts, nil)
	}

	dctx, cancel := context.WithTimeout(ctx, s.directoryTimeout)
	defer cancel()

	user, err := s.directory.FindByEmail(dctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, common.NewAppErrorWithReason(http.StatusUnauthorized,
			"Invalid email or password", common.ReasonAuthenticationFailed, nil)
	}
	if err != nil {
		return nil, common.NewAppErrorWithReason(http.StatusServiceUnavailable,
			"Authentication backend unavailable", common.ReasonInfrastructure, err)
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, common.NewAppErrorWithReason(http.StatusUnauthorized,
			"Invalid email or password", common.ReasonAuthenticationFailed, nil)
	}

	// A new login does not touch existing refresh sessions: each device
	// holds its own session until it expires or is rotated away.
	pair, appErr := s.issuePair(ctx, user.Identity())
	if appErr != nil {
		return nil, appErr
	}

	logger.Log.WithField("subject_id", user.ID).Info("Login successful, token pair issued")
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is atomically
// consumed, then a brand new pair is issued. A replayed token finds nothing
// in the store and fails; firing two concurrent refreshes with the same
// token yields exactly one winner.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, *common.AppError) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	session, err := s.sessions.Consume(sctx, refreshToken)
	if err != nil {
		return nil, common.NewAppErrorWithReason(http.StatusServiceUnavailable,
			"Session store unavailable", common.ReasonInfrastructure, err)
	}
	if session == nil {
		return nil, common.NewAppErrorWithReason(http.StatusNotFound,
			"Refresh token not found", common.ReasonRefreshNotFound, nil)
	}
	if !session.Live(s.now()) {
		// Logically dead record whose TTL had not fired yet. Consuming it
		// above already removed it, which is the right outcome for replay.
		return nil, common.NewAppErrorWithReason(http.StatusUnauthorized,
			"Invalid or expired refresh token", common.ReasonRefreshInvalid, nil)
	}

	identity := model.Identity{
		ID:    session.SubjectID,
		Email: session.Email,
		Roles: session.Roles,
	}

	// Re-resolve roles so a role change lands in the next access token.
	// When the directory is unreachable the snapshot in the session record
	// keeps refresh working; role changes then apply on the next rotation.
	dctx, dcancel := context.WithTimeout(ctx, s.directoryTimeout)
	defer dcancel()
	if user, err := s.directory.FindByID(dctx, session.SubjectID); err == nil {
		identity = user.Identity()
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logger.Log.WithError(err).WithField("subject_id", session.SubjectID).
			Warn("Directory unreachable during refresh, using session role snapshot")
	}

	pair, appErr := s.issuePair(ctx, identity)
	if appErr != nil {
		return nil, appErr
	}

	logger.Log.WithField("subject_id", identity.ID).Info("Refresh token rotated")
	return pair, nil
}

// Logout invalidates a refresh session. Idempotent: logging out a token
// that is already gone is still a successful logout.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) *common.AppError {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.sessions.Delete(sctx, refreshToken); err != nil {
		return common.NewAppErrorWithReason(http.StatusInternalServerError,
			"Logout failed", common.ReasonInfrastructure, err)
	}
	return nil
}

func (s *SessionService) issuePair(ctx context.Context, identity model.Identity) (*model.TokenPair, *common.AppError) {
	accessToken, err := s.codec.Issue(identity.Email, identity.Roles, s.accessTTL)
	if err != nil {
		return nil, common.NewAppErrorWithReason(http.StatusInternalServerError,
			"Failed to issue access token", common.ReasonInfrastructure, err)
	}

	refreshValue, err := repository.NewRefreshTokenValue()
	if err != nil {
		return nil, common.NewAppErrorWithReason(http.StatusInternalServerError,
			"Failed to issue refresh token", common.ReasonInfrastructure, err)
	}

	session := &model.RefreshSession{
		Token:     refreshValue,
		SubjectID: identity.ID,
		Email:     identity.Email,
		Roles:     identity.Roles,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.sessions.Create(sctx, session); err != nil {
		return nil, common.NewAppErrorWithReason(http.StatusServiceUnavailable,
			"Session store unavailable", common.ReasonInfrastructure, err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
	}, nil
}
