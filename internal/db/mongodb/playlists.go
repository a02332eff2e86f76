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

type playlistDoc struct {
	ID          bson.ObjectID   `bson:"_id"`
	Name        string          `bson:"name"`
	Description string          `bson:"description"`
	Videos      []bson.ObjectID `bson:"videos"`
	Owner       bson.ObjectID   `bson:"owner"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}

func (d playlistDoc) toModel() *model.Playlist {
	return &model.Playlist{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Videos:      hexes(d.Videos),
		Owner:       d.Owner.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Storage) CreatePlaylist(ctx context.Context, owner, name, description string, videos []string) (*model.Playlist, error) {
	const op = "storage.mongodb.CreatePlaylist"

	uid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := playlistDoc{
		ID:          bson.NewObjectID(),
		Name:        name,
		Description: description,
		Videos:      objectIDs(videos),
		Owner:       uid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.playlists.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	const op = "storage.mongodb.GetPlaylist"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc playlistDoc
	if err := s.playlists.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) ListPlaylistsByOwner(ctx context.Context, owner string) ([]model.Playlist, error) {
	const op = "storage.mongodb.ListPlaylistsByOwner"

	uid, err := objectID(op, owner)
	if err != nil {
		return nil, err
	}

	cur, err := s.playlists.Find(ctx, bson.D{{Key: "owner", Value: uid}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mapErr(op, err)
	}
	var docs []playlistDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(op, err)
	}

	playlists := make([]model.Playlist, 0, len(docs))
	for _, d := range docs {
		playlists = append(playlists, *d.toModel())
	}
	return playlists, nil
}

func (s *Storage) updatePlaylist(ctx context.Context, op, id string, update bson.D) (*model.Playlist, error) {
	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc playlistDoc
	err = s.playlists.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, afterUpdate()).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

// AddVideoToPlaylist appends videoID unless the playlist already holds it.
func (s *Storage) AddVideoToPlaylist(ctx context.Context, id, videoID string) (*model.Playlist, error) {
	const op = "storage.mongodb.AddVideoToPlaylist"

	vid, err := objectID(op, videoID)
	if err != nil {
		return nil, err
	}
	return s.updatePlaylist(ctx, op, id, bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "videos", Value: vid}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (s *Storage) UpdatePlaylist(ctx context.Context, id, name, description string) (*model.Playlist, error) {
	return s.updatePlaylist(ctx, "storage.mongodb.UpdatePlaylist", id, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: name},
			{Key: "description", Value: description},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}},
	})
}

func (s *Storage) DeletePlaylist(ctx context.Context, id string) error {
	const op = "storage.mongodb.DeletePlaylist"

	oid, err := objectID(op, id)
	if err != nil {
		return err
	}
	res, err := s.playlists.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}
