package model

import "time"

// User is an account. PasswordHash and RefreshToken never leave the server.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	WatchHistory []string  `json:"watchHistory"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy with the secret fields cleared.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.RefreshToken = ""
	return &cp
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Username     string
	Email        string
	Fullname     string
	Avatar       string
	CoverImage   string
	PasswordHash string
}

// AccountDetails are the user-editable profile fields.
type AccountDetails struct {
	Username string
	Email    string
	Fullname string
}

// UserSummary is the public slice of a user embedded in other documents.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// ChannelProfile is a user seen as a channel, with subscription counts
// relative to the viewer.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	Username                  string `json:"username"`
	Fullname                  string `json:"fullname"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// WatchHistoryEntry is a watched video with its owner expanded.
type WatchHistoryEntry struct {
	Video
	OwnerDetails *UserSummary `json:"ownerDetails"`
}
