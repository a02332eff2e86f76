package model

// APIResponse is the success envelope every endpoint answers with.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Content request bodies. Field names follow the public API.

type VideoIDRequest struct {
	VideoID string `json:"videoId" form:"videoId"`
}

type VideoTitleRequest struct {
	FindVideoByTitle string `json:"findVideoByTitle" form:"findVideoByTitle"`
}

type PostCommentRequest struct {
	VideoID        string `json:"videoId" form:"videoId"`
	CommentContent string `json:"commentContent" form:"commentContent"`
}

type UpdateCommentRequest struct {
	VideoID    string `json:"videoId" form:"videoId"`
	CommentID  string `json:"commentId" form:"commentId"`
	NewComment string `json:"newComment" form:"newComment"`
}

type CommentIDRequest struct {
	CommentID string `json:"commentId" form:"commentId"`
}

type CreatePlaylistRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	VideoID     string `json:"videoId" form:"videoId"`
}

type AddToPlaylistRequest struct {
	PlaylistID string `json:"playlistId" form:"playlistId"`
	NewVideoID string `json:"newVideoId" form:"newVideoId"`
}

type UpdatePlaylistRequest struct {
	PlaylistID  string `json:"playlistId" form:"playlistId"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

type PlaylistIDRequest struct {
	PlaylistID string `json:"playlistId" form:"playlistId"`
}

type ChannelIDRequest struct {
	ChannelID string `json:"channelId" form:"channelId"`
}

type PostTweetRequest struct {
	TweetContent string `json:"tweetContent" form:"tweetContent"`
}

type UpdateTweetRequest struct {
	TweetID         string `json:"tweetId" form:"tweetId"`
	NewTweetContent string `json:"newTweetContent" form:"newTweetContent"`
}

type TweetIDRequest struct {
	TweetID string `json:"tweetId" form:"tweetId"`
}

type CommentsForVideo struct {
	Comments []Comment `json:"commentsForVideo"`
	Total    int64     `json:"totalComments"`
}
