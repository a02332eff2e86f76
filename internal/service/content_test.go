package service

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/model"
)

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, "secret123")
	other := env.seedUser(t, "secret123")
	video := env.seedVideo(t, author.ID, true)
	comments := NewCommentService(env.accounts.log, env.store, env.store)
	ctx := context.Background()

	_, err := comments.Post(ctx, author.ID, "missing", "hello")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = comments.Post(ctx, author.ID, video.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	first, err := comments.Post(ctx, author.ID, video.ID, gofakeit.Sentence(6))
	require.NoError(t, err)
	_, err = comments.Post(ctx, other.ID, video.ID, gofakeit.Sentence(6))
	require.NoError(t, err)

	list, err := comments.ListForVideo(ctx, other.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, first.ID, list.Comments[0].ID)

	_, err = comments.Update(ctx, other.ID, first.ID, "hijacked")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, comments.Delete(ctx, other.ID, first.ID), apperror.ErrForbidden)

	edited, err := comments.Update(ctx, author.ID, first.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	require.NoError(t, comments.Delete(ctx, author.ID, first.ID))
	assert.ErrorIs(t, comments.Delete(ctx, author.ID, first.ID), apperror.ErrNotFound)
}

func TestLikes(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "secret123")
	fan := env.seedUser(t, "secret123")
	video := env.seedVideo(t, owner.ID, true)
	likes := NewLikeService(env.accounts.log, env.store, env.store)
	ctx := context.Background()

	_, err := likes.Like(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	_, err = likes.Like(ctx, fan.ID, video.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = likes.Like(ctx, owner.ID, video.ID)
	require.NoError(t, err)

	total, err := likes.Total(ctx, "", video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	liked, err := likes.Liked(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, video.ID, liked[0].Video)

	removed, err := likes.Remove(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, fan.ID, removed.LikedBy)

	_, err = likes.Remove(ctx, fan.ID, video.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = likes.Total(ctx, "", "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPlaylists(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "secret123")
	other := env.seedUser(t, "secret123")
	video := env.seedVideo(t, owner.ID, true)
	extra := env.seedVideo(t, other.ID, true)
	playlists := NewPlaylistService(env.accounts.log, env.store, env.store)
	ctx := context.Background()

	_, err := playlists.Create(ctx, owner.ID, model.CreatePlaylistRequest{Description: "no name"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = playlists.Create(ctx, owner.ID, model.CreatePlaylistRequest{Name: "x", VideoID: "missing"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	pl, err := playlists.Create(ctx, owner.ID, model.CreatePlaylistRequest{Name: "Favourites", Description: "best of", VideoID: video.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{video.ID}, pl.Videos)

	pl, err = playlists.AddVideo(ctx, owner.ID, pl.ID, extra.ID)
	require.NoError(t, err)
	pl, err = playlists.AddVideo(ctx, owner.ID, pl.ID, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{video.ID, extra.ID}, pl.Videos)

	_, err = playlists.AddVideo(ctx, other.ID, pl.ID, video.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	renamed, err := playlists.Update(ctx, owner.ID, model.UpdatePlaylistRequest{PlaylistID: pl.ID, Name: "Watch later"})
	require.NoError(t, err)
	assert.Equal(t, "Watch later", renamed.Name)
	assert.Equal(t, "best of", renamed.Description)

	_, err = playlists.Update(ctx, owner.ID, model.UpdatePlaylistRequest{PlaylistID: pl.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	mine, err := playlists.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	assert.ErrorIs(t, playlists.Delete(ctx, other.ID, pl.ID), apperror.ErrForbidden)
	require.NoError(t, playlists.Delete(ctx, owner.ID, pl.ID))
	assert.ErrorIs(t, playlists.Delete(ctx, owner.ID, pl.ID), apperror.ErrNotFound)
}

func TestUnpublishedVideoHiddenFromOthers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "secret123")
	stranger := env.seedUser(t, "secret123")
	draft := env.seedVideo(t, owner.ID, false)
	comments := NewCommentService(env.accounts.log, env.store, env.store)
	likes := NewLikeService(env.accounts.log, env.store, env.store)
	playlists := NewPlaylistService(env.accounts.log, env.store, env.store)
	ctx := context.Background()

	_, err := comments.Post(ctx, stranger.ID, draft.ID, "first!")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = comments.ListForVideo(ctx, stranger.ID, draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = likes.Like(ctx, stranger.ID, draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = likes.Total(ctx, "", draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = playlists.Create(ctx, stranger.ID, model.CreatePlaylistRequest{Name: "stolen", VideoID: draft.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	pl, err := playlists.Create(ctx, stranger.ID, model.CreatePlaylistRequest{Name: "mine"})
	require.NoError(t, err)
	_, err = playlists.AddVideo(ctx, stranger.ID, pl.ID, draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = comments.Post(ctx, owner.ID, draft.ID, "note to self")
	require.NoError(t, err)
	list, err := comments.ListForVideo(ctx, owner.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	_, err = likes.Like(ctx, owner.ID, draft.ID)
	require.NoError(t, err)
	total, err := likes.Total(ctx, owner.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	_, err = playlists.Create(ctx, owner.ID, model.CreatePlaylistRequest{Name: "drafts", VideoID: draft.ID})
	require.NoError(t, err)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	channel := env.seedUser(t, "secret123")
	fan := env.seedUser(t, "secret123")
	subs := NewSubscriptionService(env.accounts.log, env.store, env.store)
	ctx := context.Background()

	_, err := subs.Subscribe(ctx, fan.ID, fan.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = subs.Subscribe(ctx, fan.ID, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = subs.Subscribe(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, fan.ID, channel.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	n, err := subs.SubscriberCount(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	channels, err := subs.Channels(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, channel.Username, channels[0].Username)

	require.NoError(t, subs.Unsubscribe(ctx, fan.ID, channel.ID))
	assert.ErrorIs(t, subs.Unsubscribe(ctx, fan.ID, channel.ID), apperror.ErrNotFound)
}

func TestTweets(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, "secret123")
	other := env.seedUser(t, "secret123")
	tweets := NewTweetService(env.accounts.log, env.store)
	ctx := context.Background()

	_, err := tweets.Post(ctx, author.ID, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	tw, err := tweets.Post(ctx, author.ID, gofakeit.Sentence(5))
	require.NoError(t, err)
	assert.True(t, tw.Posted)
	_, err = tweets.Post(ctx, other.ID, gofakeit.Sentence(5))
	require.NoError(t, err)

	all, err := tweets.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := tweets.Mine(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tw.ID, mine[0].ID)

	_, err = tweets.Update(ctx, other.ID, tw.ID, "not yours")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := tweets.Update(ctx, author.ID, tw.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, tweets.Delete(ctx, other.ID, tw.ID), apperror.ErrForbidden)
	require.NoError(t, tweets.Delete(ctx, author.ID, tw.ID))
	_, err = tweets.Update(ctx, author.ID, tw.ID, "gone")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
