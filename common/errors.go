package common

import (
	"encoding/json"
	"errors"
	"go-auth-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrInfrastructure marks store or directory I/O failures. These are
// retryable and must surface as 5xx, never as a credential rejection:
// a Redis outage is not the same thing as an invalid token.
var ErrInfrastructure = errors.New("infrastructure unavailable")

// Machine-readable reason strings carried alongside the HTTP status so
// clients can distinguish "refresh now" from "log in again".
const (
	ReasonAuthenticationFailed = "authentication_failed"
	ReasonMissingCredentials   = "missing_credentials"
	ReasonInvalidAuthScheme    = "invalid_auth_scheme"
	ReasonTokenInvalid         = "token_invalid"
	ReasonTokenExpired         = "token_expired"
	ReasonRefreshInvalid       = "invalid_or_expired_refresh_token"
	ReasonRefreshNotFound      = "refresh_token_not_found"
	ReasonTooManyAttempts      = "too_many_attempts"
	ReasonInfrastructure       = "infrastructure_unavailable"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithReason builds an AppError carrying a machine-readable
// reason string in addition to the human message.
func NewAppErrorWithReason(code int, message, reason string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Reason:  reason,
		Err:     err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"reason":         e.Reason,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
