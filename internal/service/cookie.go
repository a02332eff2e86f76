package service

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/config"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// CookieConfig carries the flags shared by the session cookies.
type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewCookieConfig(cfg config.AuthConfig) (CookieConfig, error) {
	secure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return CookieConfig{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	sameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return CookieConfig{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if sameSite == http.SameSiteNoneMode && !secure {
		return CookieConfig{}, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	path := cfg.CookiePath
	if strings.TrimSpace(path) == "" {
		path = "/"
	}

	return CookieConfig{
		Path:     path,
		Domain:   cfg.CookieDomain,
		Secure:   secure,
		SameSite: sameSite,
	}, nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite mode %q", value)
	}
}
