package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/db/dbtest"
	"github.com/vidtube/backend/internal/model"
)

func TestNewTokenServiceValidatesConfig(t *testing.T) {
	store := dbtest.NewMemory()

	tests := []struct {
		name   string
		mutate func(*TokenConfig)
	}{
		{"missing access secret", func(c *TokenConfig) { c.AccessSecret = "" }},
		{"missing refresh secret", func(c *TokenConfig) { c.RefreshSecret = "" }},
		{"shared secret", func(c *TokenConfig) { c.RefreshSecret = c.AccessSecret }},
		{"zero access ttl", func(c *TokenConfig) { c.AccessTTL = 0 }},
		{"negative refresh ttl", func(c *TokenConfig) { c.RefreshTTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTokenConfig()
			tt.mutate(&cfg)

			_, err := NewTokenService(store, cfg)
			assert.ErrorIs(t, err, ErrMisconfigured)
		})
	}
}

func TestIssueTokenPair(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")

	pair, err := env.tokens.IssueTokenPair(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := env.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Email, claims.Email)

	stored, err := env.store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestIssueTokenPairUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tokens.IssueTokenPair(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestVerifyAccessTokenRejects(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")

	pair, err := env.tokens.IssueTokenPair(context.Background(), user.ID)
	require.NoError(t, err)
	other, err := env.tokens.IssueTokenPair(context.Background(), user.ID)
	require.NoError(t, err)

	parts := strings.Split(pair.AccessToken, ".")
	otherParts := strings.Split(other.AccessToken, ".")
	tampered := parts[0] + "." + parts[1] + "." + otherParts[2]

	wrongSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{UserID: user.ID}).
		SignedString([]byte(testTokenConfig().AccessSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":       "not-a-jwt",
		"tampered":      tampered,
		"wrong secret":  wrongSecret,
		"refresh token": pair.RefreshToken,
		"no expiry":     noExpiry,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := env.tokens.VerifyAccessToken(token)
			assert.ErrorIs(t, err, apperror.ErrInvalidToken)
		})
	}
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")

	env.tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := env.tokens.IssueTokenPair(context.Background(), user.ID)
	require.NoError(t, err)

	env.tokens.now = time.Now
	_, err = env.tokens.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestRotateRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")
	ctx := context.Background()

	first, err := env.tokens.IssueTokenPair(ctx, user.ID)
	require.NoError(t, err)

	second, err := env.tokens.RotateRefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.tokens.RotateRefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken, "a rotated token must not be reusable")

	_, err = env.tokens.RotateRefreshToken(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRotateRefreshTokenRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")

	pair, err := env.tokens.IssueTokenPair(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = env.tokens.RotateRefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestSecondLoginRevokesFirstRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")
	ctx := context.Background()

	first, err := env.tokens.IssueTokenPair(ctx, user.ID)
	require.NoError(t, err)
	_, err = env.tokens.IssueTokenPair(ctx, user.ID)
	require.NoError(t, err)

	_, err = env.tokens.RotateRefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

// interleavedUsers runs beforeReturn once, after the user has been read and
// before the caller sees it.
type interleavedUsers struct {
	*dbtest.Memory
	once         sync.Once
	beforeReturn func()
}

func (s *interleavedUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.Memory.GetUserByID(ctx, id)
	s.once.Do(s.beforeReturn)
	return u, err
}

func TestRotateRefreshTokenLosesToInterleavedRotation(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")
	ctx := context.Background()

	first, err := env.tokens.IssueTokenPair(ctx, user.ID)
	require.NoError(t, err)

	var winner model.TokenPair
	users := &interleavedUsers{Memory: env.store}
	users.beforeReturn = func() {
		winner, err = env.tokens.RotateRefreshToken(ctx, first.RefreshToken)
		require.NoError(t, err)
	}
	tokens, err := NewTokenService(users, testTokenConfig())
	require.NoError(t, err)

	_, err = tokens.RotateRefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.RefreshToken, stored.RefreshToken)
}

func TestRotateRefreshTokenConcurrentReuse(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")
	ctx := context.Background()

	pair, err := env.tokens.IssueTokenPair(ctx, user.ID)
	require.NoError(t, err)

	const attempts = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
		pairs = make([]model.TokenPair, attempts)
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			pairs[i], errs[i] = env.tokens.RotateRefreshToken(ctx, pair.RefreshToken)
		}()
	}
	close(start)
	wg.Wait()

	succeeded := -1
	for i, err := range errs {
		if err == nil {
			assert.Equal(t, -1, succeeded, "only one rotation may succeed")
			succeeded = i
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInvalidToken)
	}
	require.NotEqual(t, -1, succeeded)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, pairs[succeeded].RefreshToken, stored.RefreshToken)
}

// failingUsers fails every user read with a store error.
type failingUsers struct {
	*dbtest.Memory
}

var errStoreDown = errors.New("connection refused")

func (failingUsers) GetUserByID(context.Context, string) (*model.User, error) {
	return nil, errStoreDown
}

func TestRotateRefreshTokenStoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "secret123")
	ctx := context.Background()

	pair, err := env.tokens.IssueTokenPair(ctx, user.ID)
	require.NoError(t, err)

	tokens, err := NewTokenService(failingUsers{env.store}, testTokenConfig())
	require.NoError(t, err)

	_, err = tokens.RotateRefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.ErrorIs(t, err, errStoreDown)
}
