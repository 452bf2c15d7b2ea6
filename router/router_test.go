// file: router/router_test.go

package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go-auth-api/app"
	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// stubDirectory is a fixed in-memory user directory.
type stubDirectory struct {
	users map[string]*model.DirectoryUser
}

func (d *stubDirectory) FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error) {
	for _, u := range d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (d *stubDirectory) FindByID(ctx context.Context, id string) (*model.DirectoryUser, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func newTestApp(t *testing.T) *app.TestApp {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)
	directory := &stubDirectory{users: map[string]*model.DirectoryUser{
		"user-1": {
			ID:           "user-1",
			Email:        "a@x.com",
			PasswordHash: string(hash),
			Roles:        []string{"ROLE_USER"},
		},
	}}

	return app.NewTestApp(rdb, directory, testSecret, time.Minute, time.Hour)
}

func postJSON(t *testing.T, testApp *app.TestApp, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	return rr
}

func loginForTest(t *testing.T, testApp *app.TestApp) model.TokenPair {
	t.Helper()
	rr := postJSON(t, testApp, "/auth/login", `{"email":"a@x.com","password":"password123"}`)
	assert.Equal(t, http.StatusOK, rr.Code, "Login request should be successful")
	var pair model.TokenPair
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestHealthCheck(t *testing.T) {
	testApp := newTestApp(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"Auth service is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestLogin(t *testing.T) {
	testApp := newTestApp(t)

	t.Run("successful login", func(t *testing.T) {
		loginForTest(t, testApp)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := postJSON(t, testApp, "/auth/login", `{"email":"a@x.com","password":"wrongpassword"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := postJSON(t, testApp, "/auth/login", `{"email":"ghost@x.com","password":"password123"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		rr := postJSON(t, testApp, "/auth/login", `{"email":"not-an-email","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthFlow(t *testing.T) {
	testApp := newTestApp(t)

	pair := loginForTest(t, testApp)

	// Rotate: the new pair differs from the old one.
	rr := postJSON(t, testApp, "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, pair.RefreshToken))
	assert.Equal(t, http.StatusOK, rr.Code)
	var pair2 model.TokenPair
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair2))
	assert.NotEqual(t, pair.RefreshToken, pair2.RefreshToken)

	// The rotated access token identifies the same subject.
	claims1, err := testApp.Codec.Parse(pair.AccessToken)
	assert.NoError(t, err)
	claims2, err := testApp.Codec.Parse(pair2.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, claims1.Subject, claims2.Subject)

	// Replaying the consumed refresh token fails.
	rr = postJSON(t, testApp, "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, pair.RefreshToken))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The replacement token still works.
	rr = postJSON(t, testApp, "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, pair2.RefreshToken))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogoutFlow(t *testing.T) {
	testApp := newTestApp(t)

	pair := loginForTest(t, testApp)

	rr := postJSON(t, testApp, "/auth/logout", fmt.Sprintf(`{"refresh_token":"%s"}`, pair.RefreshToken))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rr.Body.String())

	// Logout is idempotent.
	rr = postJSON(t, testApp, "/auth/logout", fmt.Sprintf(`{"refresh_token":"%s"}`, pair.RefreshToken))
	assert.Equal(t, http.StatusOK, rr.Code)

	// The refresh token is dead after logout.
	rr = postJSON(t, testApp, "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, pair.RefreshToken))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProtectedRoutes(t *testing.T) {
	testApp := newTestApp(t)

	t.Run("no token is rejected at the edge", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/me", nil)
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		pair := loginForTest(t, testApp)

		req, _ := http.NewRequest("GET", "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var identity model.Identity
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &identity))
		assert.Equal(t, "a@x.com", identity.Email)
		assert.Equal(t, []string{"ROLE_USER"}, identity.Roles)
	})

	t.Run("expired token gets a refresh hint", func(t *testing.T) {
		expired, err := testApp.Codec.Issue("a@x.com", []string{"ROLE_USER"}, -time.Minute)
		assert.NoError(t, err)

		req, _ := http.NewRequest("GET", "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		var appErr common.AppError
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &appErr))
		assert.Equal(t, common.ReasonTokenExpired, appErr.Reason)
	})
}
