package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/model"
)

// videoLookup confirms that a referenced video exists.
type videoLookup interface {
	GetVideoByID(ctx context.Context, id string) (*model.Video, error)
}

// requireVideo loads a video the caller may see. Unpublished videos are
// visible to their owner only; anyone else gets not found. An empty caller is
// an anonymous viewer.
func requireVideo(ctx context.Context, videos videoLookup, caller, videoID string) (*model.Video, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, apperror.Validation("videoId is required")
	}
	video, err := videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, lookupErr(err, "video does not exist")
	}
	if !video.IsPublished && (caller == "" || video.Owner != caller) {
		return nil, apperror.NotFound("video does not exist")
	}
	return video, nil
}

type CommentService struct {
	log      *slog.Logger
	comments CommentStore
	videos   videoLookup
}

func NewCommentService(log *slog.Logger, comments CommentStore, videos videoLookup) *CommentService {
	return &CommentService{log: log, comments: comments, videos: videos}
}

func (s *CommentService) Post(ctx context.Context, owner, videoID, content string) (*model.Comment, error) {
	const op = "comment.Post"

	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("comment content is required")
	}
	if _, err := requireVideo(ctx, s.videos, owner, videoID); err != nil {
		return nil, err
	}

	comment, err := s.comments.CreateComment(ctx, videoID, owner, strings.TrimSpace(content))
	if err != nil {
		s.log.Error("failed to save comment", slog.String("op", op), sl.Err(err))
		return nil, lookupErr(err, "video does not exist")
	}
	return comment, nil
}

func (s *CommentService) ListForVideo(ctx context.Context, viewer, videoID string) (*model.CommentsForVideo, error) {
	if _, err := requireVideo(ctx, s.videos, viewer, videoID); err != nil {
		return nil, err
	}

	comments, total, err := s.comments.ListCommentsByVideo(ctx, videoID)
	if err != nil {
		s.log.Error("failed to list comments", slog.String("op", "comment.ListForVideo"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return &model.CommentsForVideo{Comments: comments, Total: total}, nil
}

func (s *CommentService) owned(ctx context.Context, owner, commentID string) (*model.Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return nil, apperror.Validation("commentId is required")
	}
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, lookupErr(err, "comment does not exist")
	}
	if comment.Owner != owner {
		return nil, apperror.Forbidden("you can only change your own comments")
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, owner, commentID, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("new comment is required")
	}
	if _, err := s.owned(ctx, owner, commentID); err != nil {
		return nil, err
	}

	comment, err := s.comments.UpdateCommentContent(ctx, commentID, strings.TrimSpace(content))
	if err != nil {
		return nil, lookupErr(err, "comment does not exist")
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, owner, commentID string) error {
	if _, err := s.owned(ctx, owner, commentID); err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return lookupErr(err, "comment does not exist")
	}
	return nil
}
