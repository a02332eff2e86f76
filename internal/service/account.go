package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// RegisterInput is a registration form with its files already staged.
type RegisterInput struct {
	Fullname       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type AccountService struct {
	log    *slog.Logger
	users  UserStore
	tokens *TokenService
	media  Uploader
}

func NewAccountService(log *slog.Logger, users UserStore, tokens *TokenService, uploader Uploader) *AccountService {
	return &AccountService{
		log:    log,
		users:  users,
		tokens: tokens,
		media:  uploader,
	}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	const op = "account.Register"
	log := s.log.With(slog.String("op", op), slog.String("username", in.Username))

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"fullname", in.Fullname},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		return nil, apperror.Validation("all fields are required", missing...)
	}

	_, err := s.users.FindUserByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("user with email or username already exists")
	case !db.IsNotFound(err):
		log.Error("failed to look up user", sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}

	if in.AvatarPath == "" {
		return nil, apperror.Validation("avatar file is missing")
	}

	avatarURL, err := s.media.Upload(ctx, in.AvatarPath, media.KindAvatar)
	if err != nil {
		log.Error("failed to upload avatar", sl.Err(err))
		return nil, uploadErr(err, "failed to upload avatar")
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.media.Upload(ctx, in.CoverImagePath, media.KindCover)
		if err != nil {
			log.Warn("cover image upload failed, continuing without it", sl.Err(err))
			coverURL = ""
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}

	user, err := s.users.CreateUser(ctx, model.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		Fullname:     strings.TrimSpace(in.Fullname),
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: string(hash),
	})
	if err != nil {
		if db.IsDuplicate(err) {
			log.Warn("user already exists", sl.Err(err))
			return nil, apperror.Conflict("user with email or username already exists")
		}
		log.Error("failed to save user", sl.Err(err))
		return nil, apperror.Internal("something went wrong while registering the user", err)
	}

	log.Info("user registered", slog.String("userID", user.ID))
	return user.Sanitized(), nil
}

// LoginResult is a successful login: the sanitised account and a fresh pair.
type LoginResult struct {
	User   *model.User
	Tokens model.TokenPair
}

func (s *AccountService) Login(ctx context.Context, req model.LoginRequest) (*LoginResult, error) {
	const op = "account.Login"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(req.Password) == "" {
		return nil, apperror.Validation("password is required")
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Username) == "" {
		return nil, apperror.Validation("username or email is required")
	}

	user, err := s.users.FindUserByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			log.Warn("user not found")
			return nil, apperror.NotFound("user does not exist")
		}
		log.Error("failed to get user", sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("invalid password", slog.String("userID", user.ID))
		return nil, apperror.Authentication("invalid user credentials")
	}

	tokens, err := s.tokens.IssueTokenPair(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		return nil, err
	}

	log.Info("user logged in", slog.String("userID", user.ID))
	return &LoginResult{User: user.Sanitized(), Tokens: tokens}, nil
}

// Logout revokes the stored refresh token. Calling it twice is harmless.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	const op = "account.Logout"

	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil && !db.IsNotFound(err) {
		s.log.Error("failed to clear refresh token", slog.String("op", op), sl.Err(err))
		return apperror.Internal("server error", err)
	}
	return nil
}

// Refresh rotates the refresh token. A rejected token is reported as an
// authentication error; store and signing failures stay internal.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	const op = "account.Refresh"

	if strings.TrimSpace(refreshToken) == "" {
		return model.TokenPair{}, apperror.Authentication("unauthorized request")
	}

	tokens, err := s.tokens.RotateRefreshToken(ctx, refreshToken)
	if err != nil {
		if apperror.From(err).Kind == apperror.KindInternal {
			s.log.Error("refresh failed", slog.String("op", op), sl.Err(err))
			return model.TokenPair{}, err
		}
		s.log.Warn("refresh rejected", slog.String("op", op), sl.Err(err))
		return model.TokenPair{}, apperror.Wrap(apperror.KindAuthentication, "invalid refresh token", err)
	}
	return tokens, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	const op = "account.ChangePassword"
	log := s.log.With(slog.String("op", op), slog.String("userID", userID))

	if strings.TrimSpace(req.OldPassword) == "" || strings.TrimSpace(req.NewPassword) == "" {
		return apperror.Validation("old and new password are required")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user does not exist")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		log.Warn("old password mismatch")
		return apperror.Authentication("invalid old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), BcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return apperror.Internal("server error", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return lookupErr(err, "user does not exist")
	}

	log.Info("password changed")
	return nil
}

// Authenticate resolves an access token to the sanitised account it names.
// Failures are InvalidToken errors.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetPublicUserByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperror.InvalidToken(err)
		}
		return nil, apperror.Internal("server error", err)
	}
	return user, nil
}

func (s *AccountService) UpdateAccountDetails(ctx context.Context, userID string, req model.UpdateAccountRequest) (*model.User, error) {
	const op = "account.UpdateAccountDetails"
	log := s.log.With(slog.String("op", op), slog.String("userID", userID))

	if strings.TrimSpace(req.NewUsername) == "" || strings.TrimSpace(req.NewEmail) == "" {
		return nil, apperror.Validation("new username and new email are required")
	}

	current, err := s.users.GetPublicUserByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user does not exist")
	}

	other, err := s.users.FindUserByUsernameOrEmail(ctx, req.NewUsername, req.NewEmail)
	switch {
	case err == nil && other.ID != userID:
		return nil, apperror.Conflict("username or email is already taken")
	case err != nil && !db.IsNotFound(err):
		log.Error("failed to look up user", sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}

	fullname := strings.TrimSpace(req.NewFullname)
	if fullname == "" {
		fullname = current.Fullname
	}

	user, err := s.users.UpdateAccountDetails(ctx, userID, model.AccountDetails{
		Username: req.NewUsername,
		Email:    req.NewEmail,
		Fullname: fullname,
	})
	if err != nil {
		if db.IsDuplicate(err) {
			return nil, apperror.Conflict("username or email is already taken")
		}
		log.Error("failed to update account", sl.Err(err))
		return nil, lookupErr(err, "user does not exist")
	}

	log.Info("account details updated")
	return user, nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID, localPath string) (*model.User, error) {
	return s.replaceImage(ctx, "account.UpdateAvatar", userID, localPath, media.KindAvatar, s.users.UpdateAvatar)
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*model.User, error) {
	return s.replaceImage(ctx, "account.UpdateCoverImage", userID, localPath, media.KindCover, s.users.UpdateCoverImage)
}

func (s *AccountService) replaceImage(
	ctx context.Context,
	op, userID, localPath string,
	kind media.Kind,
	store func(ctx context.Context, id, url string) (*model.User, error),
) (*model.User, error) {
	log := s.log.With(slog.String("op", op), slog.String("userID", userID))

	if localPath == "" {
		return nil, apperror.Validation("file is missing")
	}

	url, err := s.media.Upload(ctx, localPath, kind)
	if err != nil {
		log.Error("upload failed", sl.Err(err))
		return nil, uploadErr(err, "failed to upload file")
	}

	user, err := store(ctx, userID, url)
	if err != nil {
		log.Error("failed to save image url", sl.Err(err))
		return nil, lookupErr(err, "user does not exist")
	}
	return user, nil
}

func (s *AccountService) ChannelProfile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.Validation("username is missing")
	}

	profile, err := s.users.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if !db.IsNotFound(err) {
			s.log.Error("failed to load channel", slog.String("op", "account.ChannelProfile"), sl.Err(err))
		}
		return nil, lookupErr(err, "channel does not exist")
	}
	return profile, nil
}

func (s *AccountService) WatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryEntry, error) {
	history, err := s.users.GetWatchHistory(ctx, userID)
	if err != nil {
		if !db.IsNotFound(err) {
			s.log.Error("failed to load watch history", slog.String("op", "account.WatchHistory"), sl.Err(err))
		}
		return nil, lookupErr(err, "user does not exist")
	}
	return history, nil
}
