// Package mongodb is the document-store backend. Collections and field names
// follow the camelCase layout the API exposes.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Storage struct {
	client        *mongo.Client
	database      *mongo.Database
	users         *mongo.Collection
	videos        *mongo.Collection
	comments      *mongo.Collection
	likes         *mongo.Collection
	playlists     *mongo.Collection
	subscriptions *mongo.Collection
	tweets        *mongo.Collection
}

// New connects to MongoDB and sets up indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	mdb := client.Database(database)
	s := &Storage{
		client:        client,
		database:      mdb,
		users:         mdb.Collection("users"),
		videos:        mdb.Collection("videos"),
		comments:      mdb.Collection("comments"),
		likes:         mdb.Collection("likes"),
		playlists:     mdb.Collection("playlists"),
		subscriptions: mdb.Collection("subscriptions"),
		tweets:        mdb.Collection("tweets"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: indexes: %w", op, err)
	}

	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		name string
		coll *mongo.Collection
		keys bson.D
		opts *options.IndexOptionsBuilder
	}{
		{"users.username", s.users, bson.D{{Key: "username", Value: 1}}, options.Index().SetUnique(true)},
		{"users.email", s.users, bson.D{{Key: "email", Value: 1}}, options.Index().SetUnique(true)},
		{"videos.owner", s.videos, bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}, nil},
		{"videos.published", s.videos, bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}, nil},
		{"comments.video", s.comments, bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: 1}}, nil},
		{"likes.video_likedBy", s.likes, bson.D{{Key: "video", Value: 1}, {Key: "likedBy", Value: 1}}, options.Index().SetUnique(true)},
		{"likes.likedBy", s.likes, bson.D{{Key: "likedBy", Value: 1}}, nil},
		{"playlists.owner", s.playlists, bson.D{{Key: "owner", Value: 1}}, nil},
		{"subscriptions.subscriber_channel", s.subscriptions, bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, options.Index().SetUnique(true)},
		{"subscriptions.channel", s.subscriptions, bson.D{{Key: "channel", Value: 1}}, nil},
		{"tweets.owner", s.tweets, bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}, nil},
	}

	for _, idx := range indexes {
		im := mongo.IndexModel{Keys: idx.keys}
		if idx.opts != nil {
			im.Options = idx.opts
		}
		if _, err := idx.coll.Indexes().CreateOne(ctx, im); err != nil {
			return fmt.Errorf("%s index: %w", idx.name, err)
		}
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// objectID parses a hex id. Malformed ids cannot name a stored document, so
// they report db.ErrNotFound.
func objectID(op, hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return id, nil
}

func objectIDs(hs []string) []bson.ObjectID {
	ids := make([]bson.ObjectID, 0, len(hs))
	for _, h := range hs {
		if id, err := bson.ObjectIDFromHex(h); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func hexes(ids []bson.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// mapErr translates driver errors into the db sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	if isDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, db.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isDuplicateKeyError checks if the error is a MongoDB duplicate key error (code 11000).
func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return mongo.IsDuplicateKeyError(err)
}

func afterUpdate() *options.FindOneAndUpdateOptionsBuilder {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
