package redis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

func setupTestRedis(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionRepository(client), mr
}

func sampleSession() *ports.RemoteSession {
	return &ports.RemoteSession{
		Cookies: []*http.Cookie{
			{Name: "access_token", Value: "tok"},
			{Name: "refresh_token", Value: "ref"},
		},
		UserID:  "u_1",
		SavedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestSessionRepository_SaveAndLoad(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sid-1", sampleSession(), time.Hour))
	assert.True(t, mr.Exists("console:session:sid-1"))
	assert.Equal(t, time.Hour, mr.TTL("console:session:sid-1"))

	got, err := repo.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.Len(t, got.Cookies, 2)
	assert.Equal(t, "access_token", got.Cookies[0].Name)
	assert.Equal(t, "tok", got.Cookies[0].Value)
	assert.Equal(t, "u_1", got.UserID)
}

func TestSessionRepository_DefaultTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, repo.Save(context.Background(), "sid-2", sampleSession(), 0))
	assert.Equal(t, defaultSessionTTL, mr.TTL("console:session:sid-2"))
}

func TestSessionRepository_LoadMissing(t *testing.T) {
	repo, _ := setupTestRedis(t)
	_, err := repo.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_Expired(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "sid-3", sampleSession(), time.Minute))

	mr.FastForward(2 * time.Minute)
	_, err := repo.Load(ctx, "sid-3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_CorruptPayload(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("console:session:sid-4", "{not json"))
	_, err := repo.Load(context.Background(), "sid-4")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "sid-5", sampleSession(), time.Hour))

	require.NoError(t, repo.Delete(ctx, "sid-5"))
	assert.False(t, mr.Exists("console:session:sid-5"))
	require.NoError(t, repo.Delete(ctx, "sid-5"))
}

func TestSessionRepository_ConnectionError(t *testing.T) {
	repo, mr := setupTestRedis(t)
	mr.Close()
	_, err := repo.Load(context.Background(), "sid-6")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
