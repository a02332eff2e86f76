package model

import "time"

type Comment struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Video     string    `json:"video"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Like struct {
	ID        string    `json:"_id"`
	Video     string    `json:"video"`
	LikedBy   string    `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Playlist struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Videos      []string  `json:"videos"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Subscription struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Tweet struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Owner     string    `json:"owner"`
	Posted    bool      `json:"posted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
