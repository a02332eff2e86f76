package mongodb

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type likeDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Video     bson.ObjectID `bson:"video"`
	LikedBy   bson.ObjectID `bson:"likedBy"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d likeDoc) toModel() *model.Like {
	return &model.Like{
		ID:        d.ID.Hex(),
		Video:     d.Video.Hex(),
		LikedBy:   d.LikedBy.Hex(),
		CreatedAt: d.CreatedAt,
	}
}

// CreateLike fails with db.ErrDuplicate when the user already liked the video.
func (s *Storage) CreateLike(ctx context.Context, videoID, userID string) (*model.Like, error) {
	const op = "storage.mongodb.CreateLike"

	vid, err := objectID(op, videoID)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(op, userID)
	if err != nil {
		return nil, err
	}

	doc := likeDoc{
		ID:        bson.NewObjectID(),
		Video:     vid,
		LikedBy:   uid,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.likes.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) DeleteLike(ctx context.Context, videoID, userID string) (*model.Like, error) {
	const op = "storage.mongodb.DeleteLike"

	vid, err := objectID(op, videoID)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(op, userID)
	if err != nil {
		return nil, err
	}

	var doc likeDoc
	err = s.likes.FindOneAndDelete(ctx, bson.D{
		{Key: "video", Value: vid},
		{Key: "likedBy", Value: uid},
	}).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) ListLikesByUser(ctx context.Context, userID string) ([]model.Like, error) {
	const op = "storage.mongodb.ListLikesByUser"

	uid, err := objectID(op, userID)
	if err != nil {
		return nil, err
	}

	cur, err := s.likes.Find(ctx, bson.D{{Key: "likedBy", Value: uid}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mapErr(op, err)
	}
	var docs []likeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(op, err)
	}

	likes := make([]model.Like, 0, len(docs))
	for _, d := range docs {
		likes = append(likes, *d.toModel())
	}
	return likes, nil
}

func (s *Storage) CountLikes(ctx context.Context, videoID string) (int64, error) {
	const op = "storage.mongodb.CountLikes"

	vid, err := objectID(op, videoID)
	if err != nil {
		return 0, err
	}
	n, err := s.likes.CountDocuments(ctx, bson.D{{Key: "video", Value: vid}})
	if err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}
