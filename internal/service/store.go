package service

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/model"
)

// Storage backends (internal/db/mongodb, internal/db/postgres) satisfy all of
// the interfaces below.

type UserStore interface {
	CreateUser(ctx context.Context, u model.NewUser) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetPublicUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	SwapRefreshToken(ctx context.Context, id, current, next string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccountDetails(ctx context.Context, id string, d model.AccountDetails) (*model.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, id, coverURL string) (*model.User, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error)
	PushWatchHistory(ctx context.Context, userID, videoID string) error
	GetWatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryEntry, error)
}

type VideoStore interface {
	CreateVideo(ctx context.Context, v model.NewVideo) (*model.Video, error)
	GetVideoByID(ctx context.Context, id string) (*model.Video, error)
	ListPublishedVideos(ctx context.Context, page model.Page) ([]model.Video, int64, error)
	ListVideosByOwner(ctx context.Context, owner string) ([]model.Video, error)
	FindOwnedVideoByTitle(ctx context.Context, owner, title string) (*model.Video, error)
	UpdateVideoFile(ctx context.Context, id string, u model.VideoFileUpdate) (*model.Video, error)
	UpdateVideoThumbnail(ctx context.Context, id, thumbnailURL string) (*model.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (*model.Video, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, videoID, owner, content string) (*model.Comment, error)
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	ListCommentsByVideo(ctx context.Context, videoID string) ([]model.Comment, int64, error)
	UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type LikeStore interface {
	CreateLike(ctx context.Context, videoID, userID string) (*model.Like, error)
	DeleteLike(ctx context.Context, videoID, userID string) (*model.Like, error)
	ListLikesByUser(ctx context.Context, userID string) ([]model.Like, error)
	CountLikes(ctx context.Context, videoID string) (int64, error)
}

type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, owner, name, description string, videos []string) (*model.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (*model.Playlist, error)
	ListPlaylistsByOwner(ctx context.Context, owner string) ([]model.Playlist, error)
	AddVideoToPlaylist(ctx context.Context, id, videoID string) (*model.Playlist, error)
	UpdatePlaylist(ctx context.Context, id, name, description string) (*model.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
}

type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, subscriber, channel string) (*model.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriber, channel string) error
	CountSubscribers(ctx context.Context, channel string) (int64, error)
	ListSubscribedChannels(ctx context.Context, subscriber string) ([]model.UserSummary, error)
}

type TweetStore interface {
	CreateTweet(ctx context.Context, owner, content string) (*model.Tweet, error)
	GetTweet(ctx context.Context, id string) (*model.Tweet, error)
	ListPostedTweets(ctx context.Context) ([]model.Tweet, error)
	ListTweetsByOwner(ctx context.Context, owner string) ([]model.Tweet, error)
	UpdateTweetContent(ctx context.Context, id, content string) (*model.Tweet, error)
	DeleteTweet(ctx context.Context, id string) error
}

// Store is a complete storage backend.
type Store interface {
	UserStore
	VideoStore
	CommentStore
	LikeStore
	PlaylistStore
	SubscriptionStore
	TweetStore
	Close(ctx context.Context) error
}

// Uploader relays a staged local file to object storage and returns its
// public URL. The local file is removed whether or not the upload succeeds.
type Uploader interface {
	Upload(ctx context.Context, localPath string, kind media.Kind) (string, error)
}

// lookupErr converts a store error into the error reported to callers:
// missing records become NotFound with msg, anything else is internal.
func lookupErr(err error, msg string) error {
	if db.IsNotFound(err) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal("server error", err)
}

// uploadErr classifies a failed upload.
func uploadErr(err error, msg string) error {
	if errors.Is(err, media.ErrNotImage) {
		return apperror.Validation(msg + ": file is not a supported image")
	}
	return apperror.Upload(msg, err)
}
