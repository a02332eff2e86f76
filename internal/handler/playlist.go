package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

type PlaylistHandler struct {
	log       *slog.Logger
	playlists *service.PlaylistService
}

func NewPlaylistHandler(log *slog.Logger, playlists *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{log: log, playlists: playlists}
}

// GetPlaylists godoc
// @Summary List the caller's playlists
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse
// @Router /api/v1/playlists/getPlaylists [get]
func (h *PlaylistHandler) GetPlaylists(c *gin.Context) {
	playlists, err := h.playlists.List(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"checkPlaylist": playlists}, "Playlists fetched successfully")
}

// CreatePlaylist godoc
// @Summary Create a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreatePlaylistRequest true "Playlist"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/playlists/createPlaylist [post]
func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	var req model.CreatePlaylistRequest
	if !bind(c, h.log, &req) {
		return
	}

	playlist, err := h.playlists.Create(c.Request.Context(), CurrentUser(c).ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"createdPlaylist": playlist}, "Playlist created successfully")
}

// AddToPlaylist godoc
// @Summary Add a video to a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AddToPlaylistRequest true "Playlist and video"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/playlists/addToPlaylist [post]
func (h *PlaylistHandler) AddToPlaylist(c *gin.Context) {
	var req model.AddToPlaylistRequest
	if !bind(c, h.log, &req) {
		return
	}

	playlist, err := h.playlists.AddVideo(c.Request.Context(), CurrentUser(c).ID, req.PlaylistID, req.NewVideoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updatedPlaylist": playlist}, "Video added to playlist")
}

// UpdatePlaylist godoc
// @Summary Rename a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdatePlaylistRequest true "New name and description"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/playlists/updatePlaylist [post]
func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	var req model.UpdatePlaylistRequest
	if !bind(c, h.log, &req) {
		return
	}

	playlist, err := h.playlists.Update(c.Request.Context(), CurrentUser(c).ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updatedPlaylist": playlist}, "Playlist updated successfully")
}

// DeletePlaylist godoc
// @Summary Delete a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PlaylistIDRequest true "Playlist id"
// @Success 200 {object} model.APIResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/playlists/deletePlaylist [delete]
func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	var req model.PlaylistIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	if err := h.playlists.Delete(c.Request.Context(), CurrentUser(c).ID, req.PlaylistID); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Playlist deleted successfully")
}
