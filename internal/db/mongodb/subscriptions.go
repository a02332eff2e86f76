package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type subscriptionDoc struct {
	ID         bson.ObjectID `bson:"_id"`
	Subscriber bson.ObjectID `bson:"subscriber"`
	Channel    bson.ObjectID `bson:"channel"`
	CreatedAt  time.Time     `bson:"createdAt"`
}

func (s *Storage) CreateSubscription(ctx context.Context, subscriber, channel string) (*model.Subscription, error) {
	const op = "storage.mongodb.CreateSubscription"

	sub, err := objectID(op, subscriber)
	if err != nil {
		return nil, err
	}
	ch, err := objectID(op, channel)
	if err != nil {
		return nil, err
	}

	doc := subscriptionDoc{
		ID:         bson.NewObjectID(),
		Subscriber: sub,
		Channel:    ch,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.subscriptions.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}
	return &model.Subscription{
		ID:         doc.ID.Hex(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (s *Storage) DeleteSubscription(ctx context.Context, subscriber, channel string) error {
	const op = "storage.mongodb.DeleteSubscription"

	sub, err := objectID(op, subscriber)
	if err != nil {
		return err
	}
	ch, err := objectID(op, channel)
	if err != nil {
		return err
	}

	res, err := s.subscriptions.DeleteOne(ctx, bson.D{
		{Key: "subscriber", Value: sub},
		{Key: "channel", Value: ch},
	})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}

func (s *Storage) CountSubscribers(ctx context.Context, channel string) (int64, error) {
	const op = "storage.mongodb.CountSubscribers"

	ch, err := objectID(op, channel)
	if err != nil {
		return 0, err
	}
	n, err := s.subscriptions.CountDocuments(ctx, bson.D{{Key: "channel", Value: ch}})
	if err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}

// ListSubscribedChannels resolves the channels a user follows, most recent first.
func (s *Storage) ListSubscribedChannels(ctx context.Context, subscriber string) ([]model.UserSummary, error) {
	const op = "storage.mongodb.ListSubscribedChannels"

	sub, err := objectID(op, subscriber)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "subscriber", Value: sub}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "channel"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "channel"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: userSummaryProjection}},
			}},
		}}},
		{{Key: "$unwind", Value: "$channel"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$channel"}}}},
	}

	cur, err := s.subscriptions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(op, err)
	}
	var docs []userSummaryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(op, err)
	}

	channels := make([]model.UserSummary, 0, len(docs))
	for _, d := range docs {
		channels = append(channels, *d.toModel())
	}
	return channels, nil
}
