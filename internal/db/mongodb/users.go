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

type userDoc struct {
	ID           bson.ObjectID   `bson:"_id"`
	Username     string          `bson:"username"`
	Email        string          `bson:"email"`
	Fullname     string          `bson:"fullname"`
	Avatar       string          `bson:"avatar"`
	CoverImage   string          `bson:"coverImage"`
	WatchHistory []bson.ObjectID `bson:"watchHistory"`
	Password     string          `bson:"password,omitempty"`
	RefreshToken string          `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time       `bson:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt"`
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		Fullname:     d.Fullname,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		WatchHistory: hexes(d.WatchHistory),
		PasswordHash: d.Password,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// withoutSecrets is the projection used for every lookup that leaves the store
// towards a client.
var withoutSecrets = bson.D{{Key: "password", Value: 0}, {Key: "refreshToken", Value: 0}}

func (s *Storage) CreateUser(ctx context.Context, u model.NewUser) (*model.User, error) {
	const op = "storage.mongodb.CreateUser"

	now := time.Now().UTC()
	doc := userDoc{
		ID:           bson.NewObjectID(),
		Username:     db.NormalizeIdentity(u.Username),
		Email:        db.NormalizeIdentity(u.Email),
		Fullname:     u.Fullname,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: []bson.ObjectID{},
		Password:     u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return nil, mapErr(op, err)
	}

	user := doc.toModel()
	return user.Sanitized(), nil
}

func (s *Storage) findUser(ctx context.Context, op string, filter bson.D, public bool) (*model.User, error) {
	opts := options.FindOne()
	if public {
		opts.SetProjection(withoutSecrets)
	}

	var doc userDoc
	if err := s.users.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	const op = "storage.mongodb.GetUserByID"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, op, bson.D{{Key: "_id", Value: oid}}, false)
}

func (s *Storage) GetPublicUserByID(ctx context.Context, id string) (*model.User, error) {
	const op = "storage.mongodb.GetPublicUserByID"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, op, bson.D{{Key: "_id", Value: oid}}, true)
}

// FindUserByUsernameOrEmail matches either field; an empty argument never matches.
func (s *Storage) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	const op = "storage.mongodb.FindUserByUsernameOrEmail"

	var or bson.A
	if u := db.NormalizeIdentity(username); u != "" {
		or = append(or, bson.D{{Key: "username", Value: u}})
	}
	if e := db.NormalizeIdentity(email); e != "" {
		or = append(or, bson.D{{Key: "email", Value: e}})
	}
	if len(or) == 0 {
		return nil, fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	return s.findUser(ctx, op, bson.D{{Key: "$or", Value: or}}, false)
}

// setUserFields applies a $set to one user and fails with db.ErrNotFound when
// no user matched.
func (s *Storage) setUserFields(ctx context.Context, op, id string, fields bson.D) error {
	oid, err := objectID(op, id)
	if err != nil {
		return err
	}

	fields = append(fields, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: fields}},
	)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}

// updatePublicUser applies a $set and returns the updated user without secrets.
func (s *Storage) updatePublicUser(ctx context.Context, op, id string, fields bson.D) (*model.User, error) {
	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	fields = append(fields, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: fields}},
		afterUpdate().SetProjection(withoutSecrets),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return doc.toModel(), nil
}

func (s *Storage) SetRefreshToken(ctx context.Context, id, token string) error {
	return s.setUserFields(ctx, "storage.mongodb.SetRefreshToken", id, bson.D{{Key: "refreshToken", Value: token}})
}

// SwapRefreshToken replaces the stored refresh token only while it still
// equals current. A mismatch is ErrNotFound.
func (s *Storage) SwapRefreshToken(ctx context.Context, id, current, next string) error {
	const op = "storage.mongodb.SwapRefreshToken"

	oid, err := objectID(op, id)
	if err != nil {
		return err
	}
	if current == "" {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "refreshToken", Value: current}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "refreshToken", Value: next},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}

func (s *Storage) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.setUserFields(ctx, "storage.mongodb.UpdatePassword", id, bson.D{{Key: "password", Value: passwordHash}})
}

func (s *Storage) UpdateAccountDetails(ctx context.Context, id string, d model.AccountDetails) (*model.User, error) {
	return s.updatePublicUser(ctx, "storage.mongodb.UpdateAccountDetails", id, bson.D{
		{Key: "username", Value: db.NormalizeIdentity(d.Username)},
		{Key: "email", Value: db.NormalizeIdentity(d.Email)},
		{Key: "fullname", Value: d.Fullname},
	})
}

func (s *Storage) UpdateAvatar(ctx context.Context, id, avatarURL string) (*model.User, error) {
	return s.updatePublicUser(ctx, "storage.mongodb.UpdateAvatar", id, bson.D{{Key: "avatar", Value: avatarURL}})
}

func (s *Storage) UpdateCoverImage(ctx context.Context, id, coverURL string) (*model.User, error) {
	return s.updatePublicUser(ctx, "storage.mongodb.UpdateCoverImage", id, bson.D{{Key: "coverImage", Value: coverURL}})
}

type channelProfileDoc struct {
	ID                        bson.ObjectID `bson:"_id"`
	Username                  string        `bson:"username"`
	Fullname                  string        `bson:"fullname"`
	Email                     string        `bson:"email"`
	Avatar                    string        `bson:"avatar"`
	CoverImage                string        `bson:"coverImage"`
	SubscribersCount          int64         `bson:"subscribersCount"`
	ChannelsSubscribedToCount int64         `bson:"channelsSubscribedToCount"`
	IsSubscribed              bool          `bson:"isSubscribed"`
}

// GetChannelProfile computes subscription counts for the channel and whether
// viewerID (possibly empty) follows it.
func (s *Storage) GetChannelProfile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error) {
	const op = "storage.mongodb.GetChannelProfile"

	viewer, err := bson.ObjectIDFromHex(viewerID)
	if err != nil {
		viewer = bson.NilObjectID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "username", Value: db.NormalizeIdentity(username)}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "subscriptions"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "channel"},
			{Key: "as", Value: "subscribers"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "subscriptions"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscriber"},
			{Key: "as", Value: "subscribedTo"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "isSubscribed", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "fullname", Value: 1},
			{Key: "email", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "coverImage", Value: 1},
			{Key: "subscribersCount", Value: 1},
			{Key: "channelsSubscribedToCount", Value: 1},
			{Key: "isSubscribed", Value: 1},
		}}},
	}

	cur, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(op, err)
	}
	var docs []channelProfileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(op, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	d := docs[0]
	return &model.ChannelProfile{
		ID:                        d.ID.Hex(),
		Username:                  d.Username,
		Fullname:                  d.Fullname,
		Email:                     d.Email,
		Avatar:                    d.Avatar,
		CoverImage:                d.CoverImage,
		SubscribersCount:          d.SubscribersCount,
		ChannelsSubscribedToCount: d.ChannelsSubscribedToCount,
		IsSubscribed:              d.IsSubscribed,
	}, nil
}

// PushWatchHistory moves videoID to the front of the user's history in one
// atomic pipeline update, keeping at most db.WatchHistoryLimit entries.
func (s *Storage) PushWatchHistory(ctx context.Context, userID, videoID string) error {
	const op = "storage.mongodb.PushWatchHistory"

	uid, err := objectID(op, userID)
	if err != nil {
		return err
	}
	vid, err := objectID(op, videoID)
	if err != nil {
		return err
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$slice", Value: bson.A{
				bson.D{{Key: "$concatArrays", Value: bson.A{
					bson.A{vid},
					bson.D{{Key: "$filter", Value: bson.D{
						{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
						{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", vid}}}},
					}}},
				}}},
				db.WatchHistoryLimit,
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}

	res, err := s.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: uid}}, update)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}
	return nil
}

type watchHistoryDoc struct {
	WatchHistory []bson.ObjectID `bson:"watchHistory"`
	History      []videoDoc      `bson:"history"`
}

// GetWatchHistory returns the watched videos in history order with their
// owners expanded. Videos deleted since they were watched are skipped.
func (s *Storage) GetWatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryEntry, error) {
	const op = "storage.mongodb.GetWatchHistory"

	uid, err := objectID(op, userID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: uid}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "videos"},
			{Key: "localField", Value: "watchHistory"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "history"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "users"},
					{Key: "localField", Value: "owner"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: "ownerDetails"},
					{Key: "pipeline", Value: bson.A{
						bson.D{{Key: "$project", Value: userSummaryProjection}},
					}},
				}}},
				bson.D{{Key: "$addFields", Value: bson.D{
					{Key: "ownerDetails", Value: bson.D{{Key: "$first", Value: "$ownerDetails"}}},
				}}},
			}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "watchHistory", Value: 1},
			{Key: "history", Value: 1},
		}}},
	}

	cur, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(op, err)
	}
	var docs []watchHistoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(op, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	// $lookup does not keep the order of the local array.
	byID := make(map[bson.ObjectID]videoDoc, len(docs[0].History))
	for _, h := range docs[0].History {
		byID[h.ID] = h
	}

	entries := make([]model.WatchHistoryEntry, 0, len(docs[0].WatchHistory))
	for _, id := range docs[0].WatchHistory {
		h, ok := byID[id]
		if !ok {
			continue
		}
		entry := model.WatchHistoryEntry{Video: *h.toModel()}
		if h.OwnerDetails != nil {
			entry.OwnerDetails = h.OwnerDetails.toModel()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type userSummaryDoc struct {
	ID       bson.ObjectID `bson:"_id"`
	Username string        `bson:"username"`
	Fullname string        `bson:"fullname"`
	Avatar   string        `bson:"avatar"`
}

func (d userSummaryDoc) toModel() *model.UserSummary {
	return &model.UserSummary{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Fullname: d.Fullname,
		Avatar:   d.Avatar,
	}
}

var userSummaryProjection = bson.D{
	{Key: "username", Value: 1},
	{Key: "fullname", Value: 1},
	{Key: "avatar", Value: 1},
}
