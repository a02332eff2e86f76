package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/model"
)

// GetCurrentUser godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse{data=model.CurrentUserResponse}
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/getUser [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		writeError(c, h.log, apperror.Unauthenticated("unauthorized request"))
		return
	}
	respond(c, http.StatusOK, model.CurrentUserResponse{User: user}, "Current user fetched successfully")
}

// UpdateAccountDetails godoc
// @Summary Update username, email and full name
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateAccountRequest true "New details"
// @Success 200 {object} model.APIResponse{data=model.User}
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/users/updateAccountDetails [post]
func (h *UserHandler) UpdateAccountDetails(c *gin.Context) {
	var req model.UpdateAccountRequest
	if !bind(c, h.log, &req) {
		return
	}

	user, err := h.accounts.UpdateAccountDetails(c.Request.Context(), CurrentUser(c).ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar godoc
// @Summary Replace the avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param updatedAvatar formData file true "Avatar image"
// @Success 200 {object} model.APIResponse{data=model.User}
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/users/updateAvatar [post]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.replaceImage(c, "updatedAvatar", "Avatar updated successfully", h.accounts.UpdateAvatar)
}

// UpdateCoverImage godoc
// @Summary Replace the cover image
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param updatedCoverImage formData file true "Cover image"
// @Success 200 {object} model.APIResponse{data=model.User}
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/users/updateCoverImage [post]
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.replaceImage(c, "updatedCoverImage", "Cover image updated successfully", h.accounts.UpdateCoverImage)
}

func (h *UserHandler) replaceImage(
	c *gin.Context,
	field, message string,
	update func(ctx context.Context, userID, localPath string) (*model.User, error),
) {
	path, err := stageFile(c, h.temp, field)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer removeAll([]string{path})

	user, err := update(c.Request.Context(), CurrentUser(c).ID, path)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, user, message)
}

// GetChannelProfile godoc
// @Summary Get a channel profile
// @Description isSubscribed is computed for the caller when a session is present.
// @Tags users
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} model.APIResponse{data=model.ChannelProfile}
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/c/{username} [get]
func (h *UserHandler) GetChannelProfile(c *gin.Context) {
	var viewerID string
	if viewer := CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	profile, err := h.accounts.ChannelProfile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, profile, "Channel profile fetched successfully")
}

// GetWatchHistory godoc
// @Summary List watched videos, most recent first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse{data=[]model.WatchHistoryEntry}
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/watchHistory [get]
func (h *UserHandler) GetWatchHistory(c *gin.Context) {
	history, err := h.accounts.WatchHistory(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, history, "Watch history fetched successfully")
}
