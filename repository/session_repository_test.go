// file: repository/session_repository_test.go

package repository

import (
	"context"
	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestSessionRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSessionRepository(rdb), mr
}

func testSession(token string, ttl time.Duration) *model.RefreshSession {
	return &model.RefreshSession{
		Token:     token,
		SubjectID: "user-1",
		Email:     "a@x.com",
		Roles:     []string{"ROLE_USER"},
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestNewRefreshTokenValue(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewRefreshTokenValue()
		assert.NoError(t, err)
		// 32 bytes of entropy encode to 43 base64url characters.
		assert.Len(t, token, 43)
		assert.False(t, seen[token], "Refresh token values must not repeat")
		seen[token] = true
	}
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	repo, mr := newTestSessionRepo(t)
	ctx := context.Background()

	session := testSession("tokenA", time.Hour)
	assert.NoError(t, repo.Create(ctx, session))

	// The store-native TTL matches the record's remaining validity.
	ttl := mr.TTL(refreshTokenPrefix + "tokenA")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 2)

	found, err := repo.Find(ctx, "tokenA")
	assert.NoError(t, err)
	assert.Equal(t, session.SubjectID, found.SubjectID)
	assert.Equal(t, session.Email, found.Email)
	assert.Equal(t, session.Roles, found.Roles)
	assert.False(t, found.Revoked)
}

func TestSessionRepository_Create_RejectsAlreadyExpired(t *testing.T) {
	repo, _ := newTestSessionRepo(t)

	session := testSession("tokenA", -time.Minute)
	assert.Error(t, repo.Create(context.Background(), session))
}

func TestSessionRepository_Find_AbsentIsNotAnError(t *testing.T) {
	repo, _ := newTestSessionRepo(t)

	found, err := repo.Find(context.Background(), "never-existed")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestSessionRepository_Find_AfterTTLExpiry(t *testing.T) {
	repo, mr := newTestSessionRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, testSession("tokenA", time.Minute)))
	mr.FastForward(2 * time.Minute)

	found, err := repo.Find(ctx, "tokenA")
	assert.NoError(t, err)
	assert.Nil(t, found, "Record should self-delete via store TTL")
}

func TestSessionRepository_Consume_RemovesRecord(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, testSession("tokenA", time.Hour)))

	consumed, err := repo.Consume(ctx, "tokenA")
	assert.NoError(t, err)
	assert.NotNil(t, consumed)
	assert.Equal(t, "user-1", consumed.SubjectID)

	// The same token can never be consumed twice.
	again, err := repo.Consume(ctx, "tokenA")
	assert.NoError(t, err)
	assert.Nil(t, again)
}

func TestSessionRepository_Consume_Concurrent_SingleWinner(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, testSession("tokenA", time.Hour)))

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan *model.RefreshSession, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := repo.Consume(ctx, "tokenA")
			assert.NoError(t, err)
			results <- session
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for session := range results {
		if session != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "GETDEL must hand the record to exactly one caller")
}

func TestSessionRepository_Delete_Idempotent(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, testSession("tokenA", time.Hour)))

	assert.NoError(t, repo.Delete(ctx, "tokenA"))
	assert.NoError(t, repo.Delete(ctx, "tokenA"), "Deleting an absent key is not an error")
}

func TestSessionRepository_InfrastructureErrorsAreTyped(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewSessionRepository(rdb)
	mr.Close()

	ctx := context.Background()

	_, err = repo.Find(ctx, "tokenA")
	assert.ErrorIs(t, err, common.ErrInfrastructure)

	_, err = repo.Consume(ctx, "tokenA")
	assert.ErrorIs(t, err, common.ErrInfrastructure)

	err = repo.Delete(ctx, "tokenA")
	assert.ErrorIs(t, err, common.ErrInfrastructure)

	err = repo.Create(ctx, testSession("tokenA", time.Hour))
	assert.ErrorIs(t, err, common.ErrInfrastructure)
}
