package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/model"
)

const userColumns = `id, username, email, fullname, avatar, cover_image, watch_history, password_hash, refresh_token, created_at, updated_at`

// publicUserColumns leaves the secrets out at the query level.
const publicUserColumns = `id, username, email, fullname, avatar, cover_image, watch_history, '' AS password_hash, '' AS refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Fullname,
		&user.Avatar,
		&user.CoverImage,
		&user.WatchHistory,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u model.NewUser) (*model.User, error) {
	query := `
		INSERT INTO users (id, username, email, fullname, avatar, cover_image, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + publicUserColumns
	user, err := scanUser(p.Pool.QueryRow(ctx, query,
		uuid.NewString(),
		db.NormalizeIdentity(u.Username),
		db.NormalizeIdentity(u.Email),
		u.Fullname,
		u.Avatar,
		u.CoverImage,
		u.PasswordHash,
	))
	if err != nil {
		return nil, mapErr("postgres.CreateUser", err)
	}
	return user, nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(p.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr("postgres.GetUserByID", err)
	}
	return user, nil
}

func (p *Postgres) GetPublicUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + publicUserColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(p.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr("postgres.GetPublicUserByID", err)
	}
	return user, nil
}

// FindUserByUsernameOrEmail matches either field; an empty argument never matches.
func (p *Postgres) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	const op = "postgres.FindUserByUsernameOrEmail"

	username = db.NormalizeIdentity(username)
	email = db.NormalizeIdentity(email)
	if username == "" && email == "" {
		return nil, fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		ORDER BY created_at
		LIMIT 1
	`
	user, err := scanUser(p.Pool.QueryRow(ctx, query, username, email))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return user, nil
}

func (p *Postgres) SetRefreshToken(ctx context.Context, id, token string) error {
	return p.execOne(ctx, "postgres.SetRefreshToken",
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
		id, token,
	)
}

// SwapRefreshToken replaces the stored refresh token only while it still
// equals current. A mismatch is ErrNotFound.
func (p *Postgres) SwapRefreshToken(ctx context.Context, id, current, next string) error {
	return p.execOne(ctx, "postgres.SwapRefreshToken",
		`UPDATE users SET refresh_token = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_token = $2 AND refresh_token <> ''`,
		id, current, next,
	)
}

func (p *Postgres) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return p.execOne(ctx, "postgres.UpdatePassword",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
}

func (p *Postgres) UpdateAccountDetails(ctx context.Context, id string, d model.AccountDetails) (*model.User, error) {
	query := `
		UPDATE users
		SET username = $2, email = $3, fullname = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + publicUserColumns
	user, err := scanUser(p.Pool.QueryRow(ctx, query,
		id,
		db.NormalizeIdentity(d.Username),
		db.NormalizeIdentity(d.Email),
		d.Fullname,
	))
	if err != nil {
		return nil, mapErr("postgres.UpdateAccountDetails", err)
	}
	return user, nil
}

func (p *Postgres) UpdateAvatar(ctx context.Context, id, avatarURL string) (*model.User, error) {
	query := `UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + publicUserColumns
	user, err := scanUser(p.Pool.QueryRow(ctx, query, id, avatarURL))
	if err != nil {
		return nil, mapErr("postgres.UpdateAvatar", err)
	}
	return user, nil
}

func (p *Postgres) UpdateCoverImage(ctx context.Context, id, coverURL string) (*model.User, error) {
	query := `UPDATE users SET cover_image = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + publicUserColumns
	user, err := scanUser(p.Pool.QueryRow(ctx, query, id, coverURL))
	if err != nil {
		return nil, mapErr("postgres.UpdateCoverImage", err)
	}
	return user, nil
}

// GetChannelProfile computes subscription counts for the channel and whether
// viewerID (possibly empty) follows it.
func (p *Postgres) GetChannelProfile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error) {
	query := `
		SELECT
			u.id, u.username, u.fullname, u.email, u.avatar, u.cover_image,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
			EXISTS (
				SELECT 1 FROM subscriptions s
				WHERE s.channel_id = u.id AND $2 <> '' AND s.subscriber_id = $2
			) AS is_subscribed
		FROM users u
		WHERE u.username = $1
	`
	var cp model.ChannelProfile
	err := p.Pool.QueryRow(ctx, query, db.NormalizeIdentity(username), viewerID).Scan(
		&cp.ID,
		&cp.Username,
		&cp.Fullname,
		&cp.Email,
		&cp.Avatar,
		&cp.CoverImage,
		&cp.SubscribersCount,
		&cp.ChannelsSubscribedToCount,
		&cp.IsSubscribed,
	)
	if err != nil {
		return nil, mapErr("postgres.GetChannelProfile", err)
	}
	return &cp, nil
}

func (p *Postgres) PushWatchHistory(ctx context.Context, userID, videoID string) error {
	return p.execOne(ctx, "postgres.PushWatchHistory", `
		UPDATE users
		SET watch_history = (ARRAY[$2::text] || array_remove(watch_history, $2::text))[1:$3::int],
			updated_at = NOW()
		WHERE id = $1
	`, userID, videoID, db.WatchHistoryLimit)
}

// GetWatchHistory returns the watched videos in history order with their
// owners expanded. Videos deleted since they were watched are skipped.
func (p *Postgres) GetWatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryEntry, error) {
	const op = "postgres.GetWatchHistory"

	var exists bool
	if err := p.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return nil, mapErr(op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, db.ErrNotFound)
	}

	rows, err := p.Pool.Query(ctx, `
		SELECT `+prefixedVideoColumns("v")+`,
			o.id, o.username, o.fullname, o.avatar
		FROM users u
		CROSS JOIN LATERAL unnest(u.watch_history) WITH ORDINALITY AS h(video_id, pos)
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE u.id = $1
		ORDER BY h.pos
	`, userID)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	entries := make([]model.WatchHistoryEntry, 0)
	for rows.Next() {
		var e model.WatchHistoryEntry
		var owner model.UserSummary
		if err := rows.Scan(append(videoScanTargets(&e.Video),
			&owner.ID, &owner.Username, &owner.Fullname, &owner.Avatar,
		)...); err != nil {
			return nil, mapErr(op, err)
		}
		e.OwnerDetails = &owner
		entries = append(entries, e)
	}
	return entries, mapErr(op, rows.Err())
}
