package dbtest

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/model"
)

// Videos

func (m *Memory) CreateVideo(_ context.Context, v model.NewVideo) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	video := &model.Video{
		ID:          m.newID(),
		Owner:       v.Owner,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		IsPublished: v.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.videos[video.ID] = video
	cp := *video
	return &cp, nil
}

func (m *Memory) GetVideoByID(_ context.Context, id string) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.videos[id]
	if !ok {
		return nil, notFound("dbtest.GetVideoByID")
	}
	cp := *v
	return &cp, nil
}

func (m *Memory) selectVideos(keep func(*model.Video) bool) []model.Video {
	ids := make([]string, 0)
	for id, v := range m.videos {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	m.newestFirst(ids, func(id string) time.Time { return m.videos[id].CreatedAt })

	out := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.videos[id])
	}
	return out
}

func (m *Memory) ListPublishedVideos(_ context.Context, page model.Page) ([]model.Video, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.selectVideos(func(v *model.Video) bool { return v.IsPublished })
	total := int64(len(all))

	start := page.Skip()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *Memory) ListVideosByOwner(_ context.Context, owner string) ([]model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selectVideos(func(v *model.Video) bool { return v.Owner == owner }), nil
}

func (m *Memory) FindOwnedVideoByTitle(_ context.Context, owner, title string) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches := m.selectVideos(func(v *model.Video) bool { return v.Owner == owner && v.Title == title })
	if len(matches) == 0 {
		return nil, notFound("dbtest.FindOwnedVideoByTitle")
	}
	return &matches[0], nil
}

func (m *Memory) updateVideo(op, id string, fn func(v *model.Video)) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.videos[id]
	if !ok {
		return nil, notFound(op)
	}
	fn(v)
	cp := *v
	return &cp, nil
}

func (m *Memory) UpdateVideoFile(_ context.Context, id string, u model.VideoFileUpdate) (*model.Video, error) {
	return m.updateVideo("dbtest.UpdateVideoFile", id, func(v *model.Video) {
		if u.Title != "" {
			v.Title = u.Title
		}
		if u.Description != "" {
			v.Description = u.Description
		}
		v.VideoFile = u.VideoFile
		v.Duration = u.Duration
		v.UpdatedAt = m.now()
	})
}

func (m *Memory) UpdateVideoThumbnail(_ context.Context, id, thumbnailURL string) (*model.Video, error) {
	return m.updateVideo("dbtest.UpdateVideoThumbnail", id, func(v *model.Video) {
		v.Thumbnail = thumbnailURL
		v.UpdatedAt = m.now()
	})
}

func (m *Memory) IncrementViews(_ context.Context, id string) (*model.Video, error) {
	return m.updateVideo("dbtest.IncrementViews", id, func(v *model.Video) {
		v.Views++
	})
}

// DeleteVideo removes the video with its comments and likes.
func (m *Memory) DeleteVideo(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.videos[id]; !ok {
		return notFound("dbtest.DeleteVideo")
	}
	delete(m.videos, id)
	for cid, c := range m.comments {
		if c.Video == id {
			delete(m.comments, cid)
		}
	}
	for lid, l := range m.likes {
		if l.Video == id {
			delete(m.likes, lid)
		}
	}
	return nil
}

// Comments

func (m *Memory) CreateComment(_ context.Context, videoID, owner, content string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.videos[videoID]; !ok {
		return nil, notFound("dbtest.CreateComment")
	}
	now := m.now()
	c := &model.Comment{
		ID:        m.newID(),
		Content:   content,
		Video:     videoID,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.comments[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *Memory) GetComment(_ context.Context, id string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, notFound("dbtest.GetComment")
	}
	cp := *c
	return &cp, nil
}

// ListCommentsByVideo returns comments oldest first.
func (m *Memory) ListCommentsByVideo(_ context.Context, videoID string) ([]model.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for id, c := range m.comments {
		if c.Video == videoID {
			ids = append(ids, id)
		}
	}
	m.newestFirst(ids, func(id string) time.Time { return m.comments[id].CreatedAt })

	out := make([]model.Comment, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, *m.comments[ids[i]])
	}
	return out, int64(len(out)), nil
}

func (m *Memory) UpdateCommentContent(_ context.Context, id, content string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, notFound("dbtest.UpdateCommentContent")
	}
	c.Content = content
	c.UpdatedAt = m.now()
	cp := *c
	return &cp, nil
}

func (m *Memory) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return notFound("dbtest.DeleteComment")
	}
	delete(m.comments, id)
	return nil
}

// Likes

func (m *Memory) CreateLike(_ context.Context, videoID, userID string) (*model.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.likes {
		if l.Video == videoID && l.LikedBy == userID {
			return nil, duplicate("dbtest.CreateLike")
		}
	}
	l := &model.Like{ID: m.newID(), Video: videoID, LikedBy: userID, CreatedAt: m.now()}
	m.likes[l.ID] = l
	cp := *l
	return &cp, nil
}

func (m *Memory) DeleteLike(_ context.Context, videoID, userID string) (*model.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, l := range m.likes {
		if l.Video == videoID && l.LikedBy == userID {
			delete(m.likes, id)
			cp := *l
			return &cp, nil
		}
	}
	return nil, notFound("dbtest.DeleteLike")
}

func (m *Memory) ListLikesByUser(_ context.Context, userID string) ([]model.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for id, l := range m.likes {
		if l.LikedBy == userID {
			ids = append(ids, id)
		}
	}
	m.newestFirst(ids, func(id string) time.Time { return m.likes[id].CreatedAt })

	out := make([]model.Like, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.likes[id])
	}
	return out, nil
}

func (m *Memory) CountLikes(_ context.Context, videoID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, l := range m.likes {
		if l.Video == videoID {
			n++
		}
	}
	return n, nil
}

// Playlists

func copyPlaylist(p *model.Playlist) *model.Playlist {
	cp := *p
	cp.Videos = append([]string{}, p.Videos...)
	return &cp
}

func (m *Memory) CreatePlaylist(_ context.Context, owner, name, description string, videos []string) (*model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p := &model.Playlist{
		ID:          m.newID(),
		Name:        name,
		Description: description,
		Videos:      append([]string{}, videos...),
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.playlists[p.ID] = p
	return copyPlaylist(p), nil
}

func (m *Memory) GetPlaylist(_ context.Context, id string) (*model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("dbtest.GetPlaylist")
	}
	return copyPlaylist(p), nil
}

func (m *Memory) ListPlaylistsByOwner(_ context.Context, owner string) ([]model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for id, p := range m.playlists {
		if p.Owner == owner {
			ids = append(ids, id)
		}
	}
	m.newestFirst(ids, func(id string) time.Time { return m.playlists[id].CreatedAt })

	out := make([]model.Playlist, 0, len(ids))
	for _, id := range ids {
		out = append(out, *copyPlaylist(m.playlists[id]))
	}
	return out, nil
}

func (m *Memory) updatePlaylist(op, id string, fn func(p *model.Playlist)) (*model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound(op)
	}
	fn(p)
	p.UpdatedAt = m.now()
	return copyPlaylist(p), nil
}

func (m *Memory) AddVideoToPlaylist(_ context.Context, id, videoID string) (*model.Playlist, error) {
	return m.updatePlaylist("dbtest.AddVideoToPlaylist", id, func(p *model.Playlist) {
		for _, v := range p.Videos {
			if v == videoID {
				return
			}
		}
		p.Videos = append(p.Videos, videoID)
	})
}

func (m *Memory) UpdatePlaylist(_ context.Context, id, name, description string) (*model.Playlist, error) {
	return m.updatePlaylist("dbtest.UpdatePlaylist", id, func(p *model.Playlist) {
		p.Name = name
		p.Description = description
	})
}

func (m *Memory) DeletePlaylist(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playlists[id]; !ok {
		return notFound("dbtest.DeletePlaylist")
	}
	delete(m.playlists, id)
	return nil
}

// Subscriptions

func (m *Memory) CreateSubscription(_ context.Context, subscriber, channel string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.subscriptions {
		if s.Subscriber == subscriber && s.Channel == channel {
			return nil, duplicate("dbtest.CreateSubscription")
		}
	}
	s := &model.Subscription{ID: m.newID(), Subscriber: subscriber, Channel: channel, CreatedAt: m.now()}
	m.subscriptions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (m *Memory) DeleteSubscription(_ context.Context, subscriber, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.subscriptions {
		if s.Subscriber == subscriber && s.Channel == channel {
			delete(m.subscriptions, id)
			return nil
		}
	}
	return notFound("dbtest.DeleteSubscription")
}

func (m *Memory) CountSubscribers(_ context.Context, channel string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, s := range m.subscriptions {
		if s.Channel == channel {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListSubscribedChannels(_ context.Context, subscriber string) ([]model.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for id, s := range m.subscriptions {
		if s.Subscriber == subscriber {
			ids = append(ids, id)
		}
	}
	m.newestFirst(ids, func(id string) time.Time { return m.subscriptions[id].CreatedAt })

	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		u, ok := m.users[m.subscriptions[id].Channel]
		if !ok {
			continue
		}
		out = append(out, model.UserSummary{ID: u.ID, Username: u.Username, Fullname: u.Fullname, Avatar: u.Avatar})
	}
	return out, nil
}

// Tweets

func (m *Memory) CreateTweet(_ context.Context, owner, content string) (*model.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t := &model.Tweet{ID: m.newID(), Content: content, Owner: owner, Posted: true, CreatedAt: now, UpdatedAt: now}
	m.tweets[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *Memory) GetTweet(_ context.Context, id string) (*model.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tweets[id]
	if !ok {
		return nil, notFound("dbtest.GetTweet")
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) selectTweets(keep func(*model.Tweet) bool) []model.Tweet {
	ids := make([]string, 0)
	for id, t := range m.tweets {
		if keep(t) {
			ids = append(ids, id)
		}
	}
	m.newestFirst(ids, func(id string) time.Time { return m.tweets[id].CreatedAt })

	out := make([]model.Tweet, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.tweets[id])
	}
	return out
}

func (m *Memory) ListPostedTweets(_ context.Context) ([]model.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selectTweets(func(t *model.Tweet) bool { return t.Posted }), nil
}

func (m *Memory) ListTweetsByOwner(_ context.Context, owner string) ([]model.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selectTweets(func(t *model.Tweet) bool { return t.Owner == owner }), nil
}

func (m *Memory) UpdateTweetContent(_ context.Context, id, content string) (*model.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tweets[id]
	if !ok {
		return nil, notFound("dbtest.UpdateTweetContent")
	}
	t.Content = content
	t.UpdatedAt = m.now()
	cp := *t
	return &cp, nil
}

func (m *Memory) DeleteTweet(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tweets[id]; !ok {
		return notFound("dbtest.DeleteTweet")
	}
	delete(m.tweets, id)
	return nil
}
