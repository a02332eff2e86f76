package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidtube/backend/internal/model"
)

const likeColumns = `id, video_id, liked_by, created_at`

func scanLike(row pgx.Row) (*model.Like, error) {
	var l model.Like
	if err := row.Scan(&l.ID, &l.Video, &l.LikedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLike fails with db.ErrDuplicate when the user already liked the video.
func (p *Postgres) CreateLike(ctx context.Context, videoID, userID string) (*model.Like, error) {
	query := `INSERT INTO likes (id, video_id, liked_by) VALUES ($1, $2, $3) RETURNING ` + likeColumns
	l, err := scanLike(p.Pool.QueryRow(ctx, query, uuid.NewString(), videoID, userID))
	if err != nil {
		return nil, mapErr("postgres.CreateLike", err)
	}
	return l, nil
}

func (p *Postgres) DeleteLike(ctx context.Context, videoID, userID string) (*model.Like, error) {
	query := `DELETE FROM likes WHERE video_id = $1 AND liked_by = $2 RETURNING ` + likeColumns
	l, err := scanLike(p.Pool.QueryRow(ctx, query, videoID, userID))
	if err != nil {
		return nil, mapErr("postgres.DeleteLike", err)
	}
	return l, nil
}

func (p *Postgres) ListLikesByUser(ctx context.Context, userID string) ([]model.Like, error) {
	const op = "postgres.ListLikesByUser"

	rows, err := p.Pool.Query(ctx, `
		SELECT `+likeColumns+`
		FROM likes
		WHERE liked_by = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	likes := make([]model.Like, 0)
	for rows.Next() {
		l, err := scanLike(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		likes = append(likes, *l)
	}
	return likes, mapErr(op, rows.Err())
}

func (p *Postgres) CountLikes(ctx context.Context, videoID string) (int64, error) {
	var n int64
	if err := p.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE video_id = $1`, videoID).Scan(&n); err != nil {
		return 0, mapErr("postgres.CountLikes", err)
	}
	return n, nil
}
