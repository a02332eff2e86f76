package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// newTestStorage connects to MONGO_TEST_URI and uses a throwaway database
// that is dropped when the test ends.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("integration tests are disabled; set MONGO_TEST_URI to enable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := New(ctx, uri, "vidtube_test_"+bson.NewObjectID().Hex())
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.database.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func createUser(t *testing.T, s *Storage) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.NewUser{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		Fullname:     gofakeit.Name(),
		Avatar:       gofakeit.URL(),
		PasswordHash: "$2a$12$hash",
	})
	require.NoError(t, err)
	return u
}

func TestUsersIntegration(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	u := createUser(t, s)
	assert.Empty(t, u.PasswordHash)

	_, err := s.CreateUser(ctx, model.NewUser{Username: u.Username, Email: gofakeit.Email(), PasswordHash: "x"})
	assert.ErrorIs(t, err, db.ErrDuplicate)

	found, err := s.FindUserByUsernameOrEmail(ctx, "", "  "+u.Email+" ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "$2a$12$hash", found.PasswordHash)

	require.NoError(t, s.SetRefreshToken(ctx, u.ID, "tok"))
	full, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", full.RefreshToken)

	public, err := s.GetPublicUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, public.RefreshToken)
	assert.Empty(t, public.PasswordHash)

	_, err = s.GetUserByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = s.GetUserByID(ctx, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestSwapRefreshTokenIntegration(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	u := createUser(t, s)
	require.NoError(t, s.SetRefreshToken(ctx, u.ID, "first"))

	require.NoError(t, s.SwapRefreshToken(ctx, u.ID, "first", "second"))
	assert.ErrorIs(t, s.SwapRefreshToken(ctx, u.ID, "first", "third"), db.ErrNotFound)

	full, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", full.RefreshToken)

	require.NoError(t, s.SetRefreshToken(ctx, u.ID, ""))
	assert.ErrorIs(t, s.SwapRefreshToken(ctx, u.ID, "", "fourth"), db.ErrNotFound)
}

func TestWatchHistoryIntegration(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner := createUser(t, s)
	viewer := createUser(t, s)

	var ids []string
	for i := 0; i < 3; i++ {
		v, err := s.CreateVideo(ctx, model.NewVideo{
			Owner: owner.ID, Title: gofakeit.Sentence(3), VideoFile: gofakeit.URL(),
			Thumbnail: gofakeit.URL(), Duration: 12.5, IsPublished: true,
		})
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}

	for _, id := range []string{ids[0], ids[1], ids[2], ids[0]} {
		require.NoError(t, s.PushWatchHistory(ctx, viewer.ID, id))
	}

	history, err := s.GetWatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, []string{history[0].ID, history[1].ID, history[2].ID})
	require.NotNil(t, history[0].OwnerDetails)
	assert.Equal(t, owner.Username, history[0].OwnerDetails.Username)
}

func TestChannelProfileIntegration(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	channel := createUser(t, s)
	fan := createUser(t, s)

	_, err := s.CreateSubscription(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	_, err = s.CreateSubscription(ctx, fan.ID, channel.ID)
	assert.ErrorIs(t, err, db.ErrDuplicate)

	cp, err := s.GetChannelProfile(ctx, channel.Username, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cp.SubscribersCount)
	assert.Equal(t, int64(0), cp.ChannelsSubscribedToCount)
	assert.True(t, cp.IsSubscribed)

	anon, err := s.GetChannelProfile(ctx, channel.Username, "")
	require.NoError(t, err)
	assert.False(t, anon.IsSubscribed)

	channels, err := s.ListSubscribedChannels(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, channel.ID, channels[0].ID)

	_, err = s.GetChannelProfile(ctx, "nobody-"+gofakeit.LetterN(8), "")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteVideoCascadesIntegration(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner := createUser(t, s)
	v, err := s.CreateVideo(ctx, model.NewVideo{Owner: owner.ID, Title: "clip", Duration: 1})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, v.ID, owner.ID, "nice")
	require.NoError(t, err)
	_, err = s.CreateLike(ctx, v.ID, owner.ID)
	require.NoError(t, err)
	_, err = s.CreateLike(ctx, v.ID, owner.ID)
	assert.ErrorIs(t, err, db.ErrDuplicate)

	require.NoError(t, s.DeleteVideo(ctx, v.ID))

	comments, total, err := s.ListCommentsByVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Zero(t, total)

	n, err := s.CountLikes(ctx, v.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeleteVideo(ctx, v.ID), db.ErrNotFound)
}
