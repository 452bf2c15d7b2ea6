// file: repository/user_directory.go

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
)

// ErrUserNotFound is returned when the directory has no record for the
// requested email or id. Distinct from infrastructure failures so a
// directory outage is never reported as "unknown user".
var ErrUserNotFound = errors.New("user not found in directory")

// IUserDirectory resolves a login handle or subject id to the authoritative
// identity and role set. The directory is an external collaborator; the auth
// core never writes to it.
type IUserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error)
	FindByID(ctx context.Context, id string) (*model.DirectoryUser, error)
}

// HTTPUserDirectory talks to the remote user directory service over its
// REST surface.
type HTTPUserDirectory struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPUserDirectory(baseURL string, timeout time.Duration) *HTTPUserDirectory {
	return &HTTPUserDirectory{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTPUserDirectory) FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error) {
	return d.fetch(ctx, "/users/email/"+url.PathEscape(email))
}

func (d *HTTPUserDirectory) FindByID(ctx context.Context, id string) (*model.DirectoryUser, error) {
	return d.fetch(ctx, "/users/"+url.PathEscape(id))
}

func (d *HTTPUserDirectory) fetch(ctx context.Context, path string) (*model.DirectoryUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build directory request: %v", common.ErrInfrastructure, err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		logger.Log.WithError(err).WithField("path", path).Error("User directory request failed")
		return nil, fmt.Errorf("%w: user directory: %v", common.ErrInfrastructure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		logger.Log.WithField("status", resp.StatusCode).WithField("path", path).Error("User directory returned unexpected status")
		return nil, fmt.Errorf("%w: user directory status %d", common.ErrInfrastructure, resp.StatusCode)
	}

	user := &model.DirectoryUser{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("%w: decode directory response: %v", common.ErrInfrastructure, err)
	}
	return user, nil
}
