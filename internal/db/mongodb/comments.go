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

type commentDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Content   string        `bson:"content"`
	Video     bson.ObjectID `bson:"video"`
	Owner     bson.ObjectID `bson:"owner"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d commentDoc) toModel() *model.Comment {
	return &model.Comment{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Video:     d.Video.Hex(),
		Owner:     d.Owner.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *Storage) CreateComment(ctx context.Context, videoID, owner, content string) (*model.Comment, error) {
	const op = "storage.mongodb.CreateComment"

	vid, err := objectID(op, videoID)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := commentDoc{
		ID:        bson.NewObjectID(),
		Content:   content,
		Video:     vid,
		Owner:     uid,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	const op = "storage.mongodb.GetComment"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

// ListCommentsByVideo returns the video's comments oldest first with their count.
func (s *Storage) ListCommentsByVideo(ctx context.Context, videoID string) ([]model.Comment, int64, error) {
	const op = "storage.mongodb.ListCommentsByVideo"

	vid, err := objectID(op, videoID)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.comments.Find(ctx, bson.D{{Key: "video", Value: vid}}, opts)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapErr(op, err)
	}

	comments := make([]model.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, *d.toModel())
	}
	return comments, int64(len(comments)), nil
}

func (s *Storage) UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error) {
	const op = "storage.mongodb.UpdateCommentContent"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	err = s.comments.FindOneAndUpdate(ctx,
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

func (s *Storage) DeleteComment(ctx context.Context, id string) error {
	const op = "storage.mongodb.DeleteComment"

	oid, err := objectID(op, id)
	if err != nil {
		return err
	}
	res, err := s.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}
