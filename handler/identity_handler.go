// file: handler/identity_handler.go

package handler

import (
	"net/http"

	"go-auth-api/common"
	"go-auth-api/model"
)

// WhoAmI godoc
// @Summary      Return the authenticated caller
// @Description  Echoes the subject and roles the edge filter resolved from the access token.
// @Tags         identity
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.Identity
// @Failure      401  {object}  common.AppError
// @Router       /api/me [get]
func WhoAmI(w http.ResponseWriter, r *http.Request) *common.AppError {
	subject, ok := r.Context().Value(SubjectKey).(string)
	if !ok || subject == "" {
		return common.NewAppErrorWithReason(http.StatusUnauthorized,
			"No authenticated caller in request context", common.ReasonMissingCredentials, nil)
	}
	roles, _ := r.Context().Value(RolesKey).([]string)

	writeJSON(w, http.StatusOK, model.Identity{Email: subject, Roles: roles})
	return nil
}
