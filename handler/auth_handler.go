// file: handler/auth_handler.go

package handler

import (
	"encoding/json"
	"net/http"

	"go-auth-api/common"
	"go-auth-api/metrics"
	"go-auth-api/model"
	"go-auth-api/service"
)

type AuthHandler struct {
	Service *service.SessionService
}

func NewAuthHandler(s *service.SessionService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Login godoc
// @Summary      Authenticate and issue a token pair
// @Description  Verifies credentials against the user directory and returns a fresh access/refresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "Credentials"
// @Success      200      {object}  model.TokenPair
// @Failure      401      {object}  common.AppError
// @Failure      429      {object}  common.AppError
// @Failure      503      {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, appErr := h.Service.Login(r.Context(), req.Email, req.Password)
	if appErr != nil {
		metrics.LoginAttempts.WithLabelValues(loginResult(appErr)).Inc()
		return appErr
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Refresh godoc
// @Summary      Rotate a refresh token
// @Description  Consumes the presented refresh token and returns a new access/refresh pair. The old refresh token is invalid afterwards.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  model.TokenPair
// @Failure      401      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Failure      503      {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, appErr := h.Service.Refresh(r.Context(), req.RefreshToken)
	if appErr != nil {
		metrics.RefreshRotations.WithLabelValues("rejected").Inc()
		return appErr
	}

	metrics.RefreshRotations.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Logout godoc
// @Summary      Invalidate a refresh token
// @Description  Deletes the refresh session. Idempotent: an already absent token still logs out successfully.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  model.MessageResponse
// @Failure      500      {object}  common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if appErr := h.Service.Logout(r.Context(), req.RefreshToken); appErr != nil {
		return appErr
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
	return nil
}

func loginResult(appErr *common.AppError) string {
	switch appErr.Code {
	case http.StatusUnauthorized:
		return "rejected"
	case http.StatusTooManyRequests:
		return "throttled"
	default:
		return "error"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
