// Package dbtest provides an in-memory storage backend for tests. It follows
// the contract of the mongodb and postgres backends: missing records fail
// with db.ErrNotFound and unique violations with db.ErrDuplicate.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
)

// Memory is safe for concurrent use.
type Memory struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	users         map[string]*model.User
	videos        map[string]*model.Video
	comments      map[string]*model.Comment
	likes         map[string]*model.Like
	playlists     map[string]*model.Playlist
	subscriptions map[string]*model.Subscription
	tweets        map[string]*model.Tweet

	// order records insertion order so listings are stable when timestamps tie.
	order map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		now:           time.Now,
		users:         make(map[string]*model.User),
		videos:        make(map[string]*model.Video),
		comments:      make(map[string]*model.Comment),
		likes:         make(map[string]*model.Like),
		playlists:     make(map[string]*model.Playlist),
		subscriptions: make(map[string]*model.Subscription),
		tweets:        make(map[string]*model.Tweet),
		order:         make(map[string]int64),
	}
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) newID() string {
	id := uuid.NewString()
	m.seq++
	m.order[id] = m.seq
	return id
}

// newestFirst sorts by creation time, latest insertions first on ties.
func (m *Memory) newestFirst(ids []string, created func(string) time.Time) {
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := created(ids[i]), created(ids[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return m.order[ids[i]] > m.order[ids[j]]
	})
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, db.ErrNotFound)
}

func duplicate(op string) error {
	return fmt.Errorf("%s: %w", op, db.ErrDuplicate)
}

// Users

func (m *Memory) CreateUser(_ context.Context, u model.NewUser) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username := db.NormalizeIdentity(u.Username)
	email := db.NormalizeIdentity(u.Email)
	for _, existing := range m.users {
		if existing.Username == username || existing.Email == email {
			return nil, duplicate("dbtest.CreateUser")
		}
	}

	now := m.now()
	user := &model.User{
		ID:           m.newID(),
		Username:     username,
		Email:        email,
		Fullname:     u.Fullname,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: []string{},
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	return copyUser(user).Sanitized(), nil
}

func copyUser(u *model.User) *model.User {
	cp := *u
	cp.WatchHistory = append([]string{}, u.WatchHistory...)
	return &cp
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, notFound("dbtest.GetUserByID")
	}
	return copyUser(u), nil
}

func (m *Memory) GetPublicUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := m.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

func (m *Memory) FindUserByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username = db.NormalizeIdentity(username)
	email = db.NormalizeIdentity(email)
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return copyUser(u), nil
		}
	}
	return nil, notFound("dbtest.FindUserByUsernameOrEmail")
}

// updateUser applies fn to the stored user and returns a sanitised copy.
func (m *Memory) updateUser(op, id string, fn func(u *model.User) error) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, notFound(op)
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = m.now()
	return copyUser(u).Sanitized(), nil
}

func (m *Memory) SetRefreshToken(_ context.Context, id, token string) error {
	_, err := m.updateUser("dbtest.SetRefreshToken", id, func(u *model.User) error {
		u.RefreshToken = token
		return nil
	})
	return err
}

func (m *Memory) SwapRefreshToken(_ context.Context, id, current, next string) error {
	_, err := m.updateUser("dbtest.SwapRefreshToken", id, func(u *model.User) error {
		if current == "" || u.RefreshToken != current {
			return notFound("dbtest.SwapRefreshToken")
		}
		u.RefreshToken = next
		return nil
	})
	return err
}

func (m *Memory) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := m.updateUser("dbtest.UpdatePassword", id, func(u *model.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (m *Memory) UpdateAccountDetails(_ context.Context, id string, d model.AccountDetails) (*model.User, error) {
	const op = "dbtest.UpdateAccountDetails"
	username := db.NormalizeIdentity(d.Username)
	email := db.NormalizeIdentity(d.Email)

	return m.updateUser(op, id, func(u *model.User) error {
		for otherID, other := range m.users {
			if otherID != id && (other.Username == username || other.Email == email) {
				return duplicate(op)
			}
		}
		u.Username = username
		u.Email = email
		u.Fullname = d.Fullname
		return nil
	})
}

func (m *Memory) UpdateAvatar(_ context.Context, id, avatarURL string) (*model.User, error) {
	return m.updateUser("dbtest.UpdateAvatar", id, func(u *model.User) error {
		u.Avatar = avatarURL
		return nil
	})
}

func (m *Memory) UpdateCoverImage(_ context.Context, id, coverURL string) (*model.User, error) {
	return m.updateUser("dbtest.UpdateCoverImage", id, func(u *model.User) error {
		u.CoverImage = coverURL
		return nil
	})
}

func (m *Memory) GetChannelProfile(_ context.Context, username, viewerID string) (*model.ChannelProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username = db.NormalizeIdentity(username)
	for _, u := range m.users {
		if u.Username != username {
			continue
		}
		cp := &model.ChannelProfile{
			ID:         u.ID,
			Username:   u.Username,
			Fullname:   u.Fullname,
			Email:      u.Email,
			Avatar:     u.Avatar,
			CoverImage: u.CoverImage,
		}
		for _, s := range m.subscriptions {
			if s.Channel == u.ID {
				cp.SubscribersCount++
				if viewerID != "" && s.Subscriber == viewerID {
					cp.IsSubscribed = true
				}
			}
			if s.Subscriber == u.ID {
				cp.ChannelsSubscribedToCount++
			}
		}
		return cp, nil
	}
	return nil, notFound("dbtest.GetChannelProfile")
}

func (m *Memory) PushWatchHistory(_ context.Context, userID, videoID string) error {
	_, err := m.updateUser("dbtest.PushWatchHistory", userID, func(u *model.User) error {
		u.WatchHistory = db.PrependUnique(u.WatchHistory, videoID, db.WatchHistoryLimit)
		return nil
	})
	return err
}

func (m *Memory) GetWatchHistory(_ context.Context, userID string) ([]model.WatchHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, notFound("dbtest.GetWatchHistory")
	}

	entries := make([]model.WatchHistoryEntry, 0, len(u.WatchHistory))
	for _, id := range u.WatchHistory {
		v, ok := m.videos[id]
		if !ok {
			continue
		}
		owner, ok := m.users[v.Owner]
		if !ok {
			continue
		}
		entries = append(entries, model.WatchHistoryEntry{
			Video: *v,
			OwnerDetails: &model.UserSummary{
				ID:       owner.ID,
				Username: owner.Username,
				Fullname: owner.Fullname,
				Avatar:   owner.Avatar,
			},
		})
	}
	return entries, nil
}
