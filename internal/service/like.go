package service

import (
	"context"
	"log/slog"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/model"
)

type LikeService struct {
	log    *slog.Logger
	likes  LikeStore
	videos videoLookup
}

func NewLikeService(log *slog.Logger, likes LikeStore, videos videoLookup) *LikeService {
	return &LikeService{log: log, likes: likes, videos: videos}
}

func (s *LikeService) Like(ctx context.Context, userID, videoID string) (*model.Like, error) {
	if _, err := requireVideo(ctx, s.videos, userID, videoID); err != nil {
		return nil, err
	}

	like, err := s.likes.CreateLike(ctx, videoID, userID)
	if err != nil {
		if db.IsDuplicate(err) {
			return nil, apperror.Conflict("video already liked")
		}
		s.log.Error("failed to save like", slog.String("op", "like.Like"), sl.Err(err))
		return nil, lookupErr(err, "video does not exist")
	}
	return like, nil
}

func (s *LikeService) Liked(ctx context.Context, userID string) ([]model.Like, error) {
	likes, err := s.likes.ListLikesByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to list likes", slog.String("op", "like.Liked"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return likes, nil
}

// Total counts likes on a video visible to viewer. viewer may be empty.
func (s *LikeService) Total(ctx context.Context, viewer, videoID string) (int64, error) {
	if _, err := requireVideo(ctx, s.videos, viewer, videoID); err != nil {
		return 0, err
	}

	n, err := s.likes.CountLikes(ctx, videoID)
	if err != nil {
		s.log.Error("failed to count likes", slog.String("op", "like.Total"), sl.Err(err))
		return 0, apperror.Internal("server error", err)
	}
	return n, nil
}

func (s *LikeService) Remove(ctx context.Context, userID, videoID string) (*model.Like, error) {
	if videoID == "" {
		return nil, apperror.Validation("videoId is required")
	}

	like, err := s.likes.DeleteLike(ctx, videoID, userID)
	if err != nil {
		return nil, lookupErr(err, "like does not exist")
	}
	return like, nil
}
