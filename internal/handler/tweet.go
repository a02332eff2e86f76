package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

type TweetHandler struct {
	log    *slog.Logger
	tweets *service.TweetService
}

func NewTweetHandler(log *slog.Logger, tweets *service.TweetService) *TweetHandler {
	return &TweetHandler{log: log, tweets: tweets}
}

// GetAllTweets godoc
// @Summary List posted tweets, newest first
// @Tags tweets
// @Produce json
// @Success 200 {object} model.APIResponse
// @Router /api/v1/tweets/getAllTweets [get]
func (h *TweetHandler) GetAllTweets(c *gin.Context) {
	tweets, err := h.tweets.All(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"fetchAllTweets": tweets}, "Tweets fetched successfully")
}

// PostTweet godoc
// @Summary Post a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PostTweetRequest true "Content"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/tweets/postTweet [post]
func (h *TweetHandler) PostTweet(c *gin.Context) {
	var req model.PostTweetRequest
	if !bind(c, h.log, &req) {
		return
	}

	tweet, err := h.tweets.Post(c.Request.Context(), CurrentUser(c).ID, req.TweetContent)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tweet": tweet}, "Tweet posted successfully")
}

// GetYourTweets godoc
// @Summary List the caller's tweets
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse
// @Router /api/v1/tweets/getYourTweets [get]
func (h *TweetHandler) GetYourTweets(c *gin.Context) {
	tweets, err := h.tweets.Mine(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tweet": tweets}, "Tweets fetched successfully")
}

// UpdateTweet godoc
// @Summary Edit one of the caller's tweets
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateTweetRequest true "New content"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/tweets/updateTweet [post]
func (h *TweetHandler) UpdateTweet(c *gin.Context) {
	var req model.UpdateTweetRequest
	if !bind(c, h.log, &req) {
		return
	}

	tweet, err := h.tweets.Update(c.Request.Context(), CurrentUser(c).ID, req.TweetID, req.NewTweetContent)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updatedTweet": tweet}, "Tweet updated successfully")
}

// DeleteTweet godoc
// @Summary Delete one of the caller's tweets
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TweetIDRequest true "Tweet id"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/tweets/deleteTweet [delete]
func (h *TweetHandler) DeleteTweet(c *gin.Context) {
	var req model.TweetIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	if err := h.tweets.Delete(c.Request.Context(), CurrentUser(c).ID, req.TweetID); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Tweet deleted successfully")
}
