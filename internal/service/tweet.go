package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/model"
)

type TweetService struct {
	log    *slog.Logger
	tweets TweetStore
}

func NewTweetService(log *slog.Logger, tweets TweetStore) *TweetService {
	return &TweetService{log: log, tweets: tweets}
}

func (s *TweetService) All(ctx context.Context) ([]model.Tweet, error) {
	tweets, err := s.tweets.ListPostedTweets(ctx)
	if err != nil {
		s.log.Error("failed to list tweets", slog.String("op", "tweet.All"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return tweets, nil
}

func (s *TweetService) Post(ctx context.Context, owner, content string) (*model.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Validation("tweet content is required")
	}

	tweet, err := s.tweets.CreateTweet(ctx, owner, content)
	if err != nil {
		s.log.Error("failed to save tweet", slog.String("op", "tweet.Post"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return tweet, nil
}

func (s *TweetService) Mine(ctx context.Context, owner string) ([]model.Tweet, error) {
	tweets, err := s.tweets.ListTweetsByOwner(ctx, owner)
	if err != nil {
		s.log.Error("failed to list tweets", slog.String("op", "tweet.Mine"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return tweets, nil
}

func (s *TweetService) owned(ctx context.Context, owner, tweetID string) error {
	if strings.TrimSpace(tweetID) == "" {
		return apperror.Validation("tweetId is required")
	}
	tweet, err := s.tweets.GetTweet(ctx, tweetID)
	if err != nil {
		return lookupErr(err, "tweet does not exist")
	}
	if tweet.Owner != owner {
		return apperror.Forbidden("you can only change your own tweets")
	}
	return nil
}

func (s *TweetService) Update(ctx context.Context, owner, tweetID, content string) (*model.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Validation("new tweet content is required")
	}
	if err := s.owned(ctx, owner, tweetID); err != nil {
		return nil, err
	}

	tweet, err := s.tweets.UpdateTweetContent(ctx, tweetID, content)
	if err != nil {
		return nil, lookupErr(err, "tweet does not exist")
	}
	return tweet, nil
}

func (s *TweetService) Delete(ctx context.Context, owner, tweetID string) error {
	if err := s.owned(ctx, owner, tweetID); err != nil {
		return err
	}
	if err := s.tweets.DeleteTweet(ctx, tweetID); err != nil {
		return lookupErr(err, "tweet does not exist")
	}
	return nil
}
