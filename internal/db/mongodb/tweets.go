package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type tweetDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Content   string        `bson:"content"`
	Owner     bson.ObjectID `bson:"owner"`
	Posted    bool          `bson:"posted"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d tweetDoc) toModel() *model.Tweet {
	return &model.Tweet{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Owner:     d.Owner.Hex(),
		Posted:    d.Posted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *Storage) findTweets(ctx context.Context, op string, filter bson.D) ([]model.Tweet, error) {
	cur, err := s.tweets.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mapErr(op, err)
	}
	var docs []tweetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(op, err)
	}

	tweets := make([]model.Tweet, 0, len(docs))
	for _, d := range docs {
		tweets = append(tweets, *d.toModel())
	}
	return tweets, nil
}

func (s *Storage) CreateTweet(ctx context.Context, owner, content string) (*model.Tweet, error) {
	const op = "storage.mongodb.CreateTweet"

	uid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := tweetDoc{
		ID:        bson.NewObjectID(),
		Content:   content,
		Owner:     uid,
		Posted:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.tweets.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	const op = "storage.mongodb.GetTweet"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc tweetDoc
	if err := s.tweets.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) ListPostedTweets(ctx context.Context) ([]model.Tweet, error) {
	return s.findTweets(ctx, "storage.mongodb.ListPostedTweets", bson.D{{Key: "posted", Value: true}})
}

func (s *Storage) ListTweetsByOwner(ctx context.Context, owner string) ([]model.Tweet, error) {
	const op = "storage.mongodb.ListTweetsByOwner"

	uid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}
	return s.findTweets(ctx, op, bson.D{{Key: "owner", Value: uid}})
}

func (s *Storage) UpdateTweetContent(ctx context.Context, id, content string) (*model.Tweet, error) {
	const op = "storage.mongodb.UpdateTweetContent"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc tweetDoc
	err = s.tweets.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "content", Value: content},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
		afterUpdate(),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) DeleteTweet(ctx context.Context, id string) error {
	const op = "storage.mongodb.DeleteTweet"

	oid, err := objectID(op, id)
	if err != nil {
		return err
	}
	res, err := s.tweets.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}
