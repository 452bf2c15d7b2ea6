package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the access token payload: the subject is the identity's
// email handle, roles travel as an embedded claim.
type AccessClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}
