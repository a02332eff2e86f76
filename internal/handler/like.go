package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

type LikeHandler struct {
	log   *slog.Logger
	likes *service.LikeService
}

func NewLikeHandler(log *slog.Logger, likes *service.LikeService) *LikeHandler {
	return &LikeHandler{log: log, likes: likes}
}

// LikeVideo godoc
// @Summary Like a video
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.VideoIDRequest true "Video id"
// @Success 200 {object} model.APIResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/likes/video [post]
func (h *LikeHandler) LikeVideo(c *gin.Context) {
	var req model.VideoIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	like, err := h.likes.Like(c.Request.Context(), CurrentUser(c).ID, req.VideoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"likedVideo": like}, "Video liked successfully")
}

// GetLikedVideos godoc
// @Summary List the caller's likes
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse
// @Router /api/v1/likes/getLikedVideos [get]
func (h *LikeHandler) GetLikedVideos(c *gin.Context) {
	likes, err := h.likes.Liked(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"likedVideos": likes}, "Liked videos fetched successfully")
}

// TotalLikes godoc
// @Summary Count a video's likes
// @Tags likes
// @Accept json
// @Produce json
// @Param request body model.VideoIDRequest true "Video id"
// @Success 200 {object} model.APIResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/likes/totalLikes [post]
func (h *LikeHandler) TotalLikes(c *gin.Context) {
	var req model.VideoIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	var viewer string
	if user := CurrentUser(c); user != nil {
		viewer = user.ID
	}
	n, err := h.likes.Total(c.Request.Context(), viewer, req.VideoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"totalLikes": n}, "Likes counted successfully")
}

// RemoveLikedVideo godoc
// @Summary Remove a like
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.VideoIDRequest true "Video id"
// @Success 200 {object} model.APIResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/likes/removeLikedVideo [delete]
func (h *LikeHandler) RemoveLikedVideo(c *gin.Context) {
	var req model.VideoIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	like, err := h.likes.Remove(c.Request.Context(), CurrentUser(c).ID, req.VideoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"disLikeVideo": like}, "Like removed successfully")
}
