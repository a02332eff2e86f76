package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/model"
)

type PlaylistService struct {
	log       *slog.Logger
	playlists PlaylistStore
	videos    videoLookup
}

func NewPlaylistService(log *slog.Logger, playlists PlaylistStore, videos videoLookup) *PlaylistService {
	return &PlaylistService{log: log, playlists: playlists, videos: videos}
}

func (s *PlaylistService) List(ctx context.Context, owner string) ([]model.Playlist, error) {
	playlists, err := s.playlists.ListPlaylistsByOwner(ctx, owner)
	if err != nil {
		s.log.Error("failed to list playlists", slog.String("op", "playlist.List"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return playlists, nil
}

// Create makes a playlist, optionally seeded with one video.
func (s *PlaylistService) Create(ctx context.Context, owner string, req model.CreatePlaylistRequest) (*model.Playlist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("playlist name is required")
	}

	var videos []string
	if strings.TrimSpace(req.VideoID) != "" {
		if _, err := requireVideo(ctx, s.videos, owner, req.VideoID); err != nil {
			return nil, err
		}
		videos = []string{req.VideoID}
	}

	playlist, err := s.playlists.CreatePlaylist(ctx, owner, name, strings.TrimSpace(req.Description), videos)
	if err != nil {
		s.log.Error("failed to save playlist", slog.String("op", "playlist.Create"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return playlist, nil
}

func (s *PlaylistService) owned(ctx context.Context, owner, playlistID string) (*model.Playlist, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, apperror.Validation("playlistId is required")
	}
	playlist, err := s.playlists.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, lookupErr(err, "playlist does not exist")
	}
	if playlist.Owner != owner {
		return nil, apperror.Forbidden("you can only change your own playlists")
	}
	return playlist, nil
}

// AddVideo appends a video. Adding a video that is already there is a no-op.
func (s *PlaylistService) AddVideo(ctx context.Context, owner, playlistID, videoID string) (*model.Playlist, error) {
	if _, err := s.owned(ctx, owner, playlistID); err != nil {
		return nil, err
	}
	if _, err := requireVideo(ctx, s.videos, owner, videoID); err != nil {
		return nil, err
	}

	playlist, err := s.playlists.AddVideoToPlaylist(ctx, playlistID, videoID)
	if err != nil {
		return nil, lookupErr(err, "playlist does not exist")
	}
	return playlist, nil
}

// Update renames a playlist. Blank fields keep their current value.
func (s *PlaylistService) Update(ctx context.Context, owner string, req model.UpdatePlaylistRequest) (*model.Playlist, error) {
	current, err := s.owned(ctx, owner, req.PlaylistID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" && description == "" {
		return nil, apperror.Validation("name or description is required")
	}
	if name == "" {
		name = current.Name
	}
	if description == "" {
		description = current.Description
	}

	playlist, err := s.playlists.UpdatePlaylist(ctx, req.PlaylistID, name, description)
	if err != nil {
		return nil, lookupErr(err, "playlist does not exist")
	}
	return playlist, nil
}

func (s *PlaylistService) Delete(ctx context.Context, owner, playlistID string) error {
	if _, err := s.owned(ctx, owner, playlistID); err != nil {
		return err
	}
	if err := s.playlists.DeletePlaylist(ctx, playlistID); err != nil {
		return lookupErr(err, "playlist does not exist")
	}
	return nil
}
