package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janus/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, err := svc.GenerateSessionToken("sess-1", "demo1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID())
	assert.Equal(t, "demo1", claims.Username)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	other := NewJWTService("other-secret", time.Hour)

	foreign, err := other.GenerateSessionToken("sess-1", "demo1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	expired, err := svc.GenerateSessionToken("sess-1", "demo1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTService_DefaultExpiry(t *testing.T) {
	assert.Equal(t, DefaultSessionExpiry, NewJWTService("s", 0).Expiry())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("@Yfemz8Q7ENtB")
	require.NoError(t, err)
	assert.NotEqual(t, "@Yfemz8Q7ENtB", hash)
	assert.True(t, CheckPassword(hash, "@Yfemz8Q7ENtB"))
	assert.False(t, CheckPassword(hash, "wrong"))

	other, err := HashPassword("@Yfemz8Q7ENtB")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	live := &model.Session{ID: "a", Username: "demo1", RemainingQueries: 3, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, store.Save(ctx, live))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.RemainingQueries)

	got.RemainingQueries = 0
	again, _ := store.Get(ctx, "a")
	assert.Equal(t, 3, again.RemainingQueries, "stored session must not alias caller copy")

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	expired, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, expired)

	require.NoError(t, store.Save(ctx, &model.Session{ID: "b", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "b"))
	missing, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemorySessionStore_SaveSweepsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &model.Session{ID: "abandoned", ExpiresAt: now.Add(time.Second)}))
	require.NoError(t, store.Save(ctx, &model.Session{ID: "kept", ExpiresAt: now.Add(time.Hour)}))

	store.now = func() time.Time { return now.Add(memorySweepInterval + time.Second) }
	require.NoError(t, store.Save(ctx, &model.Session{ID: "fresh", ExpiresAt: now.Add(time.Hour)}))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.sessions, "abandoned")
	assert.Contains(t, store.sessions, "kept")
	assert.Contains(t, store.sessions, "fresh")
}
