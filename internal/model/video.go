package model

import "time"

type Video struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"`
	VideoFile   string    `json:"video"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewVideo struct {
	Owner       string
	VideoFile   string
	Thumbnail   string
	Title       string
	Description string
	Duration    float64
	IsPublished bool
}

// VideoFileUpdate replaces a video's media and text fields.
// Empty Title or Description keep the stored value.
type VideoFileUpdate struct {
	Title       string
	Description string
	VideoFile   string
	Duration    float64
}

// Page selects a window of a listing. Page is 1-based.
type Page struct {
	Page  int64
	Limit int64
}

func (p Page) Skip() int64 {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type VideoPage struct {
	Videos     []Video `json:"videos"`
	TotalDocs  int64   `json:"totalDocs"`
	Page       int64   `json:"page"`
	Limit      int64   `json:"limit"`
	TotalPages int64   `json:"totalPages"`
}
