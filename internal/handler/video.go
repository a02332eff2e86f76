package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

type VideoHandler struct {
	log    *slog.Logger
	videos *service.VideoService
	temp   media.TempDir
}

func NewVideoHandler(log *slog.Logger, videos *service.VideoService, temp media.TempDir) *VideoHandler {
	return &VideoHandler{log: log, videos: videos, temp: temp}
}

func parseDuration(raw string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperror.Validation("duration must be a number of seconds")
	}
	return d, nil
}

// UploadVideo godoc
// @Summary Upload a video with its thumbnail
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param duration formData number true "Duration in seconds"
// @Param isPublished formData bool false "Published, defaults to true"
// @Param videoFile formData file true "Video file"
// @Param thumbnail formData file true "Thumbnail image"
// @Success 201 {object} model.APIResponse{data=model.Video}
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/videos/uploadVideo [post]
func (h *VideoHandler) UploadVideo(c *gin.Context) {
	paths, err := stageFiles(c, h.temp, "videoFile", "thumbnail")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer removeAll(paths)

	duration, err := parseDuration(c.PostForm("duration"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	published := true
	if raw := strings.TrimSpace(c.PostForm("isPublished")); raw != "" {
		if published, err = strconv.ParseBool(raw); err != nil {
			writeError(c, h.log, apperror.Validation("isPublished must be a boolean"))
			return
		}
	}

	video, err := h.videos.Upload(c.Request.Context(), CurrentUser(c).ID, service.UploadVideoInput{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		Duration:      duration,
		IsPublished:   published,
		VideoPath:     paths[0],
		ThumbnailPath: paths[1],
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"video": video}, "Video uploaded successfully")
}

// GetAllVideos godoc
// @Summary List published videos, newest first
// @Tags videos
// @Produce json
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size, at most 50"
// @Success 200 {object} model.APIResponse{data=model.VideoPage}
// @Router /api/v1/videos/getAllVideos [get]
func (h *VideoHandler) GetAllVideos(c *gin.Context) {
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	res, err := h.videos.ListPublished(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, res, "Videos fetched successfully")
}

// GetMyChannelVideos godoc
// @Summary List the caller's videos
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIResponse
// @Router /api/v1/videos/getMyChannelVideos [get]
func (h *VideoHandler) GetMyChannelVideos(c *gin.Context) {
	videos, err := h.videos.ListMine(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"videos": videos}, "Channel videos fetched successfully")
}

// WatchVideo godoc
// @Summary Watch a video
// @Description Counts a view and records the video in the caller's watch history.
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.VideoIDRequest true "Video id"
// @Success 200 {object} model.APIResponse{data=model.Video}
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/videos/watch [post]
func (h *VideoHandler) WatchVideo(c *gin.Context) {
	var req model.VideoIDRequest
	if !bind(c, h.log, &req) {
		return
	}

	video, err := h.videos.Watch(c.Request.Context(), CurrentUser(c).ID, req.VideoID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, video, "Video fetched successfully")
}

// UpdateVideo godoc
// @Summary Replace the media of one of the caller's videos
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param findVideoByTitle formData string true "Current title"
// @Param updateTitle formData string false "New title"
// @Param updateDescription formData string false "New description"
// @Param duration formData number true "Duration in seconds"
// @Param updatedVideo formData file true "Video file"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/videos/updateVideo [post]
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	path, err := stageFile(c, h.temp, "updatedVideo")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer removeAll([]string{path})

	duration, err := parseDuration(c.PostForm("duration"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	video, err := h.videos.Update(c.Request.Context(), CurrentUser(c).ID, service.UpdateVideoInput{
		FindByTitle: c.PostForm("findVideoByTitle"),
		Title:       c.PostForm("updateTitle"),
		Description: c.PostForm("updateDescription"),
		Duration:    duration,
		VideoPath:   path,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updatedVideo": video}, "Video updated successfully")
}

// UpdateThumbnail godoc
// @Summary Replace a video thumbnail
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param findVideoByTitle formData string true "Current title"
// @Param updatedThumbnail formData file true "Thumbnail image"
// @Success 200 {object} model.APIResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/videos/updateThumbnail [post]
func (h *VideoHandler) UpdateThumbnail(c *gin.Context) {
	path, err := stageFile(c, h.temp, "updatedThumbnail")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer removeAll([]string{path})

	video, err := h.videos.UpdateThumbnail(c.Request.Context(), CurrentUser(c).ID, c.PostForm("findVideoByTitle"), path)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updatedThumbnail": video}, "Thumbnail updated successfully")
}

// DeleteVideo godoc
// @Summary Delete one of the caller's videos
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.VideoTitleRequest true "Title"
// @Success 200 {object} model.APIResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/videos/deleteVideo [post]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	var req model.VideoTitleRequest
	if !bind(c, h.log, &req) {
		return
	}

	if err := h.videos.Delete(c.Request.Context(), CurrentUser(c).ID, req.FindVideoByTitle); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Video deleted successfully")
}
