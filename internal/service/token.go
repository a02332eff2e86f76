package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
)

var ErrMisconfigured = errors.New("auth config invalid")

// TokenConfig holds the signing material for both token kinds.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

func TokenConfigFrom(cfg config.AuthConfig) TokenConfig {
	return TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	}
}

// TokenClaims is the payload of both access and refresh tokens.
type TokenClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// tokenUsers is the slice of the user store the token service needs.
type tokenUsers interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	SwapRefreshToken(ctx context.Context, id, current, next string) error
}

// TokenService issues, verifies and rotates tokens. Each account holds at
// most one refresh token; issuing a new pair overwrites it.
type TokenService struct {
	users tokenUsers
	cfg   TokenConfig
	now   func() time.Time
}

func NewTokenService(users tokenUsers, cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("%w: ACCESS_TOKEN_SECRET is required", ErrMisconfigured)
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: REFRESH_TOKEN_SECRET is required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrMisconfigured)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: token expiry must be positive", ErrMisconfigured)
	}

	return &TokenService{users: users, cfg: cfg, now: time.Now}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// IssueTokenPair signs a fresh pair for the account and stores the refresh
// token on it, revoking whichever one was there before.
func (s *TokenService) IssueTokenPair(ctx context.Context, accountID string) (model.TokenPair, error) {
	user, err := s.users.GetUserByID(ctx, accountID)
	if err != nil {
		return model.TokenPair{}, lookupErr(err, "user does not exist")
	}
	return s.issueFor(ctx, user)
}

func (s *TokenService) issueFor(ctx context.Context, user *model.User) (model.TokenPair, error) {
	pair, err := s.signPair(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return model.TokenPair{}, lookupErr(err, "user does not exist")
	}
	return pair, nil
}

func (s *TokenService) signPair(user *model.User) (model.TokenPair, error) {
	access, err := s.sign(user, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return model.TokenPair{}, apperror.Internal("failed to generate tokens", err)
	}
	refresh, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return model.TokenPair{}, apperror.Internal("failed to generate tokens", err)
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken checks signature and expiry against the access secret.
func (s *TokenService) VerifyAccessToken(token string) (*TokenClaims, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return nil, apperror.InvalidToken(err)
	}
	return claims, nil
}

var errRefreshUsed = errors.New("refresh token is expired or used")

// RotateRefreshToken exchanges a refresh token for a new pair. The incoming
// token must verify and must be the one currently stored on the account.
func (s *TokenService) RotateRefreshToken(ctx context.Context, incoming string) (model.TokenPair, error) {
	claims, err := s.parse(incoming, s.cfg.RefreshSecret)
	if err != nil {
		return model.TokenPair{}, apperror.InvalidToken(err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return model.TokenPair{}, apperror.InvalidToken(err)
		}
		return model.TokenPair{}, apperror.Internal("server error", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != incoming {
		return model.TokenPair{}, apperror.InvalidToken(errRefreshUsed)
	}

	pair, err := s.signPair(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	// The swap only lands if no concurrent rotation or logout got there first.
	if err := s.users.SwapRefreshToken(ctx, user.ID, incoming, pair.RefreshToken); err != nil {
		if db.IsNotFound(err) {
			return model.TokenPair{}, apperror.InvalidToken(errRefreshUsed)
		}
		return model.TokenPair{}, apperror.Internal("server error", err)
	}
	return pair, nil
}

func (s *TokenService) sign(user *model.User, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *TokenService) parse(tokenStr, secret string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}
