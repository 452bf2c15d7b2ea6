// file: model/identity.go

package model

// Role labels carried in access tokens. The core only transports these;
// it does not evaluate authorization policy.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Identity is the resolved caller: a plain value, never a framework type.
// It is immutable per token issuance and sourced from the user directory.
type Identity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// DirectoryUser is the record returned by the user directory. PasswordHash
// never leaves the login path.
type DirectoryUser struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash"`
	Roles        []string `json:"roles"`
}

// Identity strips the credential hash off a directory record.
func (u *DirectoryUser) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Roles: u.Roles,
	}
}
