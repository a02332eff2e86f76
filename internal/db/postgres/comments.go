package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidtube/backend/internal/model"
)

const commentColumns = `id, content, video_id, owner_id, created_at, updated_at`

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(&c.ID, &c.Content, &c.Video, &c.Owner, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Postgres) CreateComment(ctx context.Context, videoID, owner, content string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (id, content, video_id, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + commentColumns
	c, err := scanComment(p.Pool.QueryRow(ctx, query, uuid.NewString(), content, videoID, owner))
	if err != nil {
		return nil, mapErr("postgres.CreateComment", err)
	}
	return c, nil
}

func (p *Postgres) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(p.Pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("postgres.GetComment", err)
	}
	return c, nil
}

// ListCommentsByVideo returns the video's comments oldest first with their count.
func (p *Postgres) ListCommentsByVideo(ctx context.Context, videoID string) ([]model.Comment, int64, error) {
	const op = "postgres.ListCommentsByVideo"

	rows, err := p.Pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE video_id = $1
		ORDER BY created_at, id
	`, videoID)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, mapErr(op, err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(op, err)
	}
	return comments, int64(len(comments)), nil
}

func (p *Postgres) UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error) {
	query := `UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + commentColumns
	c, err := scanComment(p.Pool.QueryRow(ctx, query, id, content))
	if err != nil {
		return nil, mapErr("postgres.UpdateCommentContent", err)
	}
	return c, nil
}

func (p *Postgres) DeleteComment(ctx context.Context, id string) error {
	return p.execOne(ctx, "postgres.DeleteComment", `DELETE FROM comments WHERE id = $1`, id)
}
