package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type videoDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	Owner       bson.ObjectID `bson:"owner"`
	VideoFile   string        `bson:"videoFile"`
	Thumbnail   string        `bson:"thumbnail"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Duration    float64       `bson:"duration"`
	Views       int64         `bson:"views"`
	IsPublished bool          `bson:"isPublished"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`

	// Filled by the watch-history $lookup only.
	OwnerDetails *userSummaryDoc `bson:"ownerDetails,omitempty"`
}

func (d videoDoc) toModel() *model.Video {
	return &model.Video{
		ID:          d.ID.Hex(),
		Owner:       d.Owner.Hex(),
		VideoFile:   d.VideoFile,
		Thumbnail:   d.Thumbnail,
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Views:       d.Views,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func decodeVideos(ctx context.Context, cur *mongo.Cursor) ([]model.Video, error) {
	var docs []videoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	videos := make([]model.Video, 0, len(docs))
	for _, d := range docs {
		videos = append(videos, *d.toModel())
	}
	return videos, nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *Storage) CreateVideo(ctx context.Context, v model.NewVideo) (*model.Video, error) {
	const op = "storage.mongodb.CreateVideo"

	owner, err := objectID(op, v.Owner)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := videoDoc{
		ID:          bson.NewObjectID(),
		Owner:       owner,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		IsPublished: v.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.videos.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) findVideo(ctx context.Context, op string, filter bson.D) (*model.Video, error) {
	var doc videoDoc
	if err := s.videos.FindOne(ctx, filter, options.FindOne().SetSort(newestFirst)).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) GetVideoByID(ctx context.Context, id string) (*model.Video, error) {
	const op = "storage.mongodb.GetVideoByID"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	return s.findVideo(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

// ListPublishedVideos returns one page of published videos, newest first,
// together with the total number of published videos.
func (s *Storage) ListPublishedVideos(ctx context.Context, page model.Page) ([]model.Video, int64, error) {
	const op = "storage.mongodb.ListPublishedVideos"

	filter := bson.D{{Key: "isPublished", Value: true}}
	total, err := s.videos.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(page.Skip()).
		SetLimit(page.Limit)
	cur, err := s.videos.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	videos, err := decodeVideos(ctx, cur)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	return videos, total, nil
}

func (s *Storage) ListVideosByOwner(ctx context.Context, owner string) ([]model.Video, error) {
	const op = "storage.mongodb.ListVideosByOwner"

	oid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}
	cur, err := s.videos.Find(ctx, bson.D{{Key: "owner", Value: oid}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mapErr(op, err)
	}
	videos, err := decodeVideos(ctx, cur)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return videos, nil
}

func (s *Storage) FindOwnedVideoByTitle(ctx context.Context, owner, title string) (*model.Video, error) {
	const op = "storage.mongodb.FindOwnedVideoByTitle"

	oid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}
	return s.findVideo(ctx, op, bson.D{
		{Key: "owner", Value: oid},
		{Key: "title", Value: title},
	})
}

func (s *Storage) updateVideo(ctx context.Context, op, id string, update bson.D) (*model.Video, error) {
	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc videoDoc
	err = s.videos.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, afterUpdate()).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) UpdateVideoFile(ctx context.Context, id string, u model.VideoFileUpdate) (*model.Video, error) {
	set := bson.D{
		{Key: "videoFile", Value: u.VideoFile},
		{Key: "duration", Value: u.Duration},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
	if u.Title != "" {
		set = append(set, bson.E{Key: "title", Value: u.Title})
	}
	if u.Description != "" {
		set = append(set, bson.E{Key: "description", Value: u.Description})
	}
	return s.updateVideo(ctx, "storage.mongodb.UpdateVideoFile", id, bson.D{{Key: "$set", Value: set}})
}

func (s *Storage) UpdateVideoThumbnail(ctx context.Context, id, thumbnailURL string) (*model.Video, error) {
	return s.updateVideo(ctx, "storage.mongodb.UpdateVideoThumbnail", id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "thumbnail", Value: thumbnailURL},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (s *Storage) IncrementViews(ctx context.Context, id string) (*model.Video, error) {
	return s.updateVideo(ctx, "storage.mongodb.IncrementViews", id, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "views", Value: int64(1)}}},
	})
}

// DeleteVideo removes the video together with its comments and likes.
func (s *Storage) DeleteVideo(ctx context.Context, id string) error {
	const op = "storage.mongodb.DeleteVideo"

	oid, err := objectID(op, id)
	if err != nil {
		return err
	}

	res, err := s.videos.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	byVideo := bson.D{{Key: "video", Value: oid}}
	if _, err := s.comments.DeleteMany(ctx, byVideo); err != nil {
		return fmt.Errorf("%s: comments: %w", op, err)
	}
	if _, err := s.likes.DeleteMany(ctx, byVideo); err != nil {
		return fmt.Errorf("%s: likes: %w", op, err)
	}
	return nil
}
