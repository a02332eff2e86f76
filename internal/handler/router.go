package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// RouterDeps carries everything NewRouter mounts.
type RouterDeps struct {
	Log           *slog.Logger
	Auth          authenticator
	Tracer        trace.TracerProvider
	CORSOrigins   []string
	MaxBodyBytes  int64
	Users         *UserHandler
	Videos        *VideoHandler
	Comments      *CommentHandler
	Likes         *LikeHandler
	Playlists     *PlaylistHandler
	Subscriptions *SubscriptionHandler
	Tweets        *TweetHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		telemetry.Middleware(d.Tracer),
		RequestLogger(d.Log),
		CORS(d.CORSOrigins),
		BodyLimit(d.MaxBodyBytes),
	)

	r.GET("/", Root)
	r.GET("/ping", Ping)

	session := Session(d.Auth, d.Log)
	api := r.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.POST("/refresh-token", d.Users.RefreshAccessToken)
	users.GET("/c/:username", OptionalSession(d.Auth), d.Users.GetChannelProfile)
	users.POST("/logout", session, d.Users.Logout)
	users.POST("/changePassword", session, d.Users.ChangePassword)
	users.GET("/getUser", session, d.Users.GetCurrentUser)
	users.POST("/updateAccountDetails", session, d.Users.UpdateAccountDetails)
	users.POST("/updateAvatar", session, d.Users.UpdateAvatar)
	users.POST("/updateCoverImage", session, d.Users.UpdateCoverImage)
	users.GET("/watchHistory", session, d.Users.GetWatchHistory)

	videos := api.Group("/videos")
	videos.GET("/getAllVideos", d.Videos.GetAllVideos)
	videos.POST("/uploadVideo", session, d.Videos.UploadVideo)
	videos.GET("/getMyChannelVideos", session, d.Videos.GetMyChannelVideos)
	videos.POST("/watch", session, d.Videos.WatchVideo)
	videos.POST("/updateVideo", session, d.Videos.UpdateVideo)
	videos.POST("/updateThumbnail", session, d.Videos.UpdateThumbnail)
	videos.POST("/deleteVideo", session, d.Videos.DeleteVideo)

	comments := api.Group("/comments", session)
	comments.POST("/postComment", d.Comments.PostComment)
	comments.POST("/getCommentForSpecificVideo", d.Comments.GetCommentsForVideo)
	comments.POST("/updateComment", d.Comments.UpdateComment)
	comments.DELETE("/deleteComment", d.Comments.DeleteComment)

	likes := api.Group("/likes")
	likes.POST("/totalLikes", OptionalSession(d.Auth), d.Likes.TotalLikes)
	likes.POST("/video", session, d.Likes.LikeVideo)
	likes.GET("/getLikedVideos", session, d.Likes.GetLikedVideos)
	likes.DELETE("/removeLikedVideo", session, d.Likes.RemoveLikedVideo)

	playlists := api.Group("/playlists", session)
	playlists.GET("/getPlaylists", d.Playlists.GetPlaylists)
	playlists.POST("/createPlaylist", d.Playlists.CreatePlaylist)
	playlists.POST("/addToPlaylist", d.Playlists.AddToPlaylist)
	playlists.POST("/updatePlaylist", d.Playlists.UpdatePlaylist)
	playlists.DELETE("/deletePlaylist", d.Playlists.DeletePlaylist)

	subs := api.Group("/subscriptions", session)
	subs.POST("/channel", d.Subscriptions.Subscribe)
	subs.DELETE("/channel", d.Subscriptions.Unsubscribe)
	subs.POST("/channelSubscribers", d.Subscriptions.ChannelSubscribers)
	subs.GET("/getMyChannels", d.Subscriptions.GetMyChannels)

	tweets := api.Group("/tweets")
	tweets.GET("/getAllTweets", d.Tweets.GetAllTweets)
	tweets.POST("/postTweet", session, d.Tweets.PostTweet)
	tweets.GET("/getYourTweets", session, d.Tweets.GetYourTweets)
	tweets.POST("/updateTweet", session, d.Tweets.UpdateTweet)
	tweets.DELETE("/deleteTweet", session, d.Tweets.DeleteTweet)

	return r
}
