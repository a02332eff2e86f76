package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

// SessionCookies writes and clears the accessToken and refreshToken cookies.
type SessionCookies struct {
	Config     service.CookieConfig
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s SessionCookies) set(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(s.Config.SameSite)
	c.SetCookie(service.AccessCookieName, pair.AccessToken, int(s.AccessTTL.Seconds()), s.Config.Path, s.Config.Domain, s.Config.Secure, true)
	c.SetCookie(service.RefreshCookieName, pair.RefreshToken, int(s.RefreshTTL.Seconds()), s.Config.Path, s.Config.Domain, s.Config.Secure, true)
}

func (s SessionCookies) clear(c *gin.Context) {
	c.SetSameSite(s.Config.SameSite)
	c.SetCookie(service.AccessCookieName, "", -1, s.Config.Path, s.Config.Domain, s.Config.Secure, true)
	c.SetCookie(service.RefreshCookieName, "", -1, s.Config.Path, s.Config.Domain, s.Config.Secure, true)
}

type UserHandler struct {
	log      *slog.Logger
	accounts *service.AccountService
	cookies  SessionCookies
	temp     media.TempDir
}

func NewUserHandler(log *slog.Logger, accounts *service.AccountService, cookies SessionCookies, temp media.TempDir) *UserHandler {
	return &UserHandler{log: log, accounts: accounts, cookies: cookies, temp: temp}
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept mpfd
// @Produce json
// @Param fullname formData string true "Full name"
// @Param email formData string true "Email"
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	paths, err := stageFiles(c, h.temp, "avatar", "coverImage")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer removeAll(paths)

	user, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Fullname:       c.PostForm("fullname"),
		Email:          c.PostForm("email"),
		Username:       c.PostForm("username"),
		Password:       c.PostForm("password"),
		AvatarPath:     paths[0],
		CoverImagePath: paths[1],
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login godoc
// @Summary Login with username or email
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.APIResponse{data=model.LoginResponse}
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bind(c, h.log, &req) {
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.cookies.set(c, res.Tokens)
	respond(c, http.StatusOK, model.LoginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout godoc
// @Summary Logout
// @Description Revokes the stored refresh token and clears both cookies.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	user := CurrentUser(c)
	if err := h.accounts.Logout(c.Request.Context(), user.ID); err != nil {
		writeError(c, h.log, err)
		return
	}

	h.cookies.clear(c)
	respond(c, http.StatusOK, nil, "User logged out successfully")
}

// RefreshAccessToken godoc
// @Summary Rotate the refresh token
// @Description Reads the refreshToken cookie, falling back to the body field.
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest false "Refresh token"
// @Success 200 {object} model.APIResponse{data=model.TokenPair}
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/refresh-token [post]
func (h *UserHandler) RefreshAccessToken(c *gin.Context) {
	token, _ := c.Cookie(service.RefreshCookieName)
	if strings.TrimSpace(token) == "" {
		var req model.RefreshRequest
		_ = c.ShouldBind(&req)
		token = req.RefreshToken
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.cookies.set(c, pair)
	respond(c, http.StatusOK, pair, "Access token refreshed")
}

// ChangePassword godoc
// @Summary Change the current password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/changePassword [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if !bind(c, h.log, &req) {
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), CurrentUser(c).ID, req); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Password changed successfully")
}
