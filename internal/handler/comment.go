package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

type CommentHandler struct {
	log      *slog.Logger
	comments *service.CommentService
}

func NewCommentHandler(log *slog.Logger, comments *service.CommentService) *CommentHandler {
	return &CommentHandler{log: log, comments: comments}
}

// PostComment godoc
// @Summary Comment on a video
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PostCommentRequest true "Comment"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/comments/postComment [post]
func (h *CommentHandler) PostComment(c *gin.Context) {
	var req model.PostCommentRequest
	if !bind(c, h.log, &req) {
		return
	}

	comment, err := h.comments.Post(c.Request.Context(), CurrentUser(c).ID, req.VideoID, req.CommentContent)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"postedComment": comment}, "Comment posted successfully")
}

// GetCommentsForVideo godoc
// @Summary List a video's comments, oldest first
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.VideoIDRequest true "Video id"
// @Success 200 {object} model.APIResponse{data=model.CommentsForVideo}
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/comments/getCommentForSpecificVideo [post]
func (h *CommentHandler) GetCommentsForVideo(c *gin.Context) {
	var req model.VideoIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	res, err := h.comments.ListForVideo(c.Request.Context(), CurrentUser(c).ID, req.VideoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, res, "Comments fetched successfully")
}

// UpdateComment godoc
// @Summary Edit one of the caller's comments
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateCommentRequest true "New content"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/comments/updateComment [post]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req model.UpdateCommentRequest
	if !bind(c, h.log, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), CurrentUser(c).ID, req.CommentID, req.NewComment)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updateComment": comment}, "Comment updated successfully")
}

// DeleteComment godoc
// @Summary Delete one of the caller's comments
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CommentIDRequest true "Comment id"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/comments/deleteComment [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	var req model.CommentIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), CurrentUser(c).ID, req.CommentID); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Comment deleted successfully")
}
