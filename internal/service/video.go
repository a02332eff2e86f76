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
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

type UploadVideoInput struct {
	Title         string
	Description   string
	Duration      float64
	IsPublished   bool
	VideoPath     string
	ThumbnailPath string
}

type UpdateVideoInput struct {
	FindByTitle string
	Title       string
	Description string
	Duration    float64
	VideoPath   string
}

// watchHistory is the slice of the user store a video view touches.
type watchHistory interface {
	PushWatchHistory(ctx context.Context, userID, videoID string) error
}

type VideoService struct {
	log     *slog.Logger
	videos  VideoStore
	history watchHistory
	media   Uploader
}

func NewVideoService(log *slog.Logger, videos VideoStore, history watchHistory, uploader Uploader) *VideoService {
	return &VideoService{
		log:     log,
		videos:  videos,
		history: history,
		media:   uploader,
	}
}

// Upload relays the video and its thumbnail concurrently. The first failed
// upload cancels the other.
func (s *VideoService) Upload(ctx context.Context, owner string, in UploadVideoInput) (*model.Video, error) {
	const op = "video.Upload"
	log := s.log.With(slog.String("op", op), slog.String("owner", owner))

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, apperror.Validation("title and description are required")
	}
	if in.Duration <= 0 {
		return nil, apperror.Validation("duration must be a positive number of seconds")
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, apperror.Validation("video file and thumbnail are required")
	}

	var videoURL, thumbnailURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.media.Upload(gctx, in.VideoPath, media.KindVideo)
		if err != nil {
			return err
		}
		videoURL = url
		return nil
	})
	g.Go(func() error {
		url, err := s.media.Upload(gctx, in.ThumbnailPath, media.KindThumbnail)
		if err != nil {
			return err
		}
		thumbnailURL = url
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("media upload failed", sl.Err(err))
		return nil, uploadErr(err, "failed to upload video")
	}

	video, err := s.videos.CreateVideo(ctx, model.NewVideo{
		Owner:       owner,
		VideoFile:   videoURL,
		Thumbnail:   thumbnailURL,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Duration:    in.Duration,
		IsPublished: in.IsPublished,
	})
	if err != nil {
		log.Error("failed to save video", sl.Err(err))
		return nil, apperror.Internal("something went wrong while saving the video", err)
	}

	log.Info("video uploaded", slog.String("videoID", video.ID))
	return video, nil
}

// ListPublished pages through published videos, newest first. page and limit
// fall back to 1 and DefaultPageLimit; limit is capped at MaxPageLimit.
func (s *VideoService) ListPublished(ctx context.Context, page, limit int64) (*model.VideoPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	videos, total, err := s.videos.ListPublishedVideos(ctx, model.Page{Page: page, Limit: limit})
	if err != nil {
		s.log.Error("failed to list videos", slog.String("op", "video.ListPublished"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}

	return &model.VideoPage{
		Videos:     videos,
		TotalDocs:  total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *VideoService) ListMine(ctx context.Context, owner string) ([]model.Video, error) {
	videos, err := s.videos.ListVideosByOwner(ctx, owner)
	if err != nil {
		s.log.Error("failed to list channel videos", slog.String("op", "video.ListMine"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return videos, nil
}

// Watch counts a view and moves the video to the front of the viewer's
// history. Unpublished videos are only visible to their owner.
func (s *VideoService) Watch(ctx context.Context, userID, videoID string) (*model.Video, error) {
	const op = "video.Watch"

	if strings.TrimSpace(videoID) == "" {
		return nil, apperror.Validation("videoId is required")
	}

	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, lookupErr(err, "video does not exist")
	}
	if !video.IsPublished && video.Owner != userID {
		return nil, apperror.NotFound("video does not exist")
	}

	video, err = s.videos.IncrementViews(ctx, videoID)
	if err != nil {
		return nil, lookupErr(err, "video does not exist")
	}

	if err := s.history.PushWatchHistory(ctx, userID, videoID); err != nil {
		s.log.Error("failed to record watch history", slog.String("op", op), sl.Err(err))
		return nil, lookupErr(err, "user does not exist")
	}
	return video, nil
}

func (s *VideoService) findOwned(ctx context.Context, owner, title string) (*model.Video, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperror.Validation("findVideoByTitle is required")
	}
	video, err := s.videos.FindOwnedVideoByTitle(ctx, owner, strings.TrimSpace(title))
	if err != nil {
		return nil, lookupErr(err, "video does not exist")
	}
	return video, nil
}

// Update replaces the media file of one of owner's videos, found by title.
func (s *VideoService) Update(ctx context.Context, owner string, in UpdateVideoInput) (*model.Video, error) {
	const op = "video.Update"
	log := s.log.With(slog.String("op", op), slog.String("owner", owner))

	if in.VideoPath == "" {
		return nil, apperror.Validation("updated video file is required")
	}
	if in.Duration <= 0 {
		return nil, apperror.Validation("duration must be a positive number of seconds")
	}

	video, err := s.findOwned(ctx, owner, in.FindByTitle)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, in.VideoPath, media.KindVideo)
	if err != nil {
		log.Error("media upload failed", sl.Err(err))
		return nil, uploadErr(err, "failed to upload video")
	}

	updated, err := s.videos.UpdateVideoFile(ctx, video.ID, model.VideoFileUpdate{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		VideoFile:   url,
		Duration:    in.Duration,
	})
	if err != nil {
		log.Error("failed to update video", sl.Err(err))
		return nil, lookupErr(err, "video does not exist")
	}
	return updated, nil
}

func (s *VideoService) UpdateThumbnail(ctx context.Context, owner, title, localPath string) (*model.Video, error) {
	const op = "video.UpdateThumbnail"

	if localPath == "" {
		return nil, apperror.Validation("updated thumbnail is required")
	}

	video, err := s.findOwned(ctx, owner, title)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, localPath, media.KindThumbnail)
	if err != nil {
		s.log.Error("media upload failed", slog.String("op", op), sl.Err(err))
		return nil, uploadErr(err, "failed to upload thumbnail")
	}

	updated, err := s.videos.UpdateVideoThumbnail(ctx, video.ID, url)
	if err != nil {
		return nil, lookupErr(err, "video does not exist")
	}
	return updated, nil
}

func (s *VideoService) Delete(ctx context.Context, owner, title string) error {
	const op = "video.Delete"

	video, err := s.findOwned(ctx, owner, title)
	if err != nil {
		return err
	}

	if err := s.videos.DeleteVideo(ctx, video.ID); err != nil {
		if !db.IsNotFound(err) {
			s.log.Error("failed to delete video", slog.String("op", op), sl.Err(err))
		}
		return lookupErr(err, "video does not exist")
	}

	s.log.Info("video deleted", slog.String("op", op), slog.String("videoID", video.ID))
	return nil
}
