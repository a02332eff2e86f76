package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

type SubscriptionHandler struct {
	log           *slog.Logger
	subscriptions *service.SubscriptionService
}

func NewSubscriptionHandler(log *slog.Logger, subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{log: log, subscriptions: subscriptions}
}

// Subscribe godoc
// @Summary Subscribe to a channel
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChannelIDRequest true "Channel id"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/subscriptions/channel [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req model.ChannelIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	sub, err := h.subscriptions.Subscribe(c.Request.Context(), CurrentUser(c).ID, req.ChannelID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"subChannel": sub}, "Subscribed successfully")
}

// Unsubscribe godoc
// @Summary Unsubscribe from a channel
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChannelIDRequest true "Channel id"
// @Success 200 {object} model.APIResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/subscriptions/channel [delete]
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	var req model.ChannelIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	if err := h.subscriptions.Unsubscribe(c.Request.Context(), CurrentUser(c).ID, req.ChannelID); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Unsubscribed successfully")
}

// ChannelSubscribers godoc
// @Summary Count a channel's subscribers
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChannelIDRequest true "Channel id"
// @Success 200 {object} model.APIResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/subscriptions/channelSubscribers [post]
func (h *SubscriptionHandler) ChannelSubscribers(c *gin.Context) {
	var req model.ChannelIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	n, err := h.subscriptions.SubscriberCount(c.Request.Context(), req.ChannelID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"totalSubscribers": n}, "Subscribers counted successfully")
}

// GetMyChannels godoc
// @Summary List the channels the caller follows
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse
// @Router /api/v1/subscriptions/getMyChannels [get]
func (h *SubscriptionHandler) GetMyChannels(c *gin.Context) {
	channels, err := h.subscriptions.Channels(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"mySubscribedChannels": channels}, "Subscribed channels fetched successfully")
}
