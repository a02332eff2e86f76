package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/model"
)

// channelLookup confirms that a channel (a user) exists.
type channelLookup interface {
	GetPublicUserByID(ctx context.Context, id string) (*model.User, error)
}

type SubscriptionService struct {
	log           *slog.Logger
	subscriptions SubscriptionStore
	channels      channelLookup
}

func NewSubscriptionService(log *slog.Logger, subscriptions SubscriptionStore, channels channelLookup) *SubscriptionService {
	return &SubscriptionService{log: log, subscriptions: subscriptions, channels: channels}
}

func (s *SubscriptionService) requireChannel(ctx context.Context, channelID string) error {
	if strings.TrimSpace(channelID) == "" {
		return apperror.Validation("channelId is required")
	}
	if _, err := s.channels.GetPublicUserByID(ctx, channelID); err != nil {
		return lookupErr(err, "channel does not exist")
	}
	return nil
}

func (s *SubscriptionService) Subscribe(ctx context.Context, subscriber, channelID string) (*model.Subscription, error) {
	if subscriber == channelID {
		return nil, apperror.Validation("you cannot subscribe to your own channel")
	}
	if err := s.requireChannel(ctx, channelID); err != nil {
		return nil, err
	}

	sub, err := s.subscriptions.CreateSubscription(ctx, subscriber, channelID)
	if err != nil {
		if db.IsDuplicate(err) {
			return nil, apperror.Conflict("already subscribed to this channel")
		}
		s.log.Error("failed to save subscription", slog.String("op", "subscription.Subscribe"), sl.Err(err))
		return nil, lookupErr(err, "channel does not exist")
	}
	return sub, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriber, channelID string) error {
	if strings.TrimSpace(channelID) == "" {
		return apperror.Validation("channelId is required")
	}
	if err := s.subscriptions.DeleteSubscription(ctx, subscriber, channelID); err != nil {
		return lookupErr(err, "not subscribed to this channel")
	}
	return nil
}

func (s *SubscriptionService) SubscriberCount(ctx context.Context, channelID string) (int64, error) {
	if err := s.requireChannel(ctx, channelID); err != nil {
		return 0, err
	}

	n, err := s.subscriptions.CountSubscribers(ctx, channelID)
	if err != nil {
		s.log.Error("failed to count subscribers", slog.String("op", "subscription.SubscriberCount"), sl.Err(err))
		return 0, apperror.Internal("server error", err)
	}
	return n, nil
}

func (s *SubscriptionService) Channels(ctx context.Context, subscriber string) ([]model.UserSummary, error) {
	channels, err := s.subscriptions.ListSubscribedChannels(ctx, subscriber)
	if err != nil {
		s.log.Error("failed to list channels", slog.String("op", "subscription.Channels"), sl.Err(err))
		return nil, apperror.Internal("server error", err)
	}
	return channels, nil
}
