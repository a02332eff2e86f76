package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidtube/backend/internal/model"
)

const tweetColumns = `id, content, owner_id, posted, created_at, updated_at`

func scanTweet(row pgx.Row) (*model.Tweet, error) {
	var t model.Tweet
	if err := row.Scan(&t.ID, &t.Content, &t.Owner, &t.Posted, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) queryTweets(ctx context.Context, op, query string, args ...any) ([]model.Tweet, error) {
	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	tweets := make([]model.Tweet, 0)
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		tweets = append(tweets, *t)
	}
	return tweets, mapErr(op, rows.Err())
}

func (p *Postgres) CreateTweet(ctx context.Context, owner, content string) (*model.Tweet, error) {
	query := `INSERT INTO tweets (id, content, owner_id, posted) VALUES ($1, $2, $3, TRUE) RETURNING ` + tweetColumns
	t, err := scanTweet(p.Pool.QueryRow(ctx, query, uuid.NewString(), content, owner))
	if err != nil {
		return nil, mapErr("postgres.CreateTweet", err)
	}
	return t, nil
}

func (p *Postgres) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	t, err := scanTweet(p.Pool.QueryRow(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("postgres.GetTweet", err)
	}
	return t, nil
}

func (p *Postgres) ListPostedTweets(ctx context.Context) ([]model.Tweet, error) {
	return p.queryTweets(ctx, "postgres.ListPostedTweets",
		`SELECT `+tweetColumns+` FROM tweets WHERE posted ORDER BY created_at DESC, id`)
}

func (p *Postgres) ListTweetsByOwner(ctx context.Context, owner string) ([]model.Tweet, error) {
	return p.queryTweets(ctx, "postgres.ListTweetsByOwner",
		`SELECT `+tweetColumns+` FROM tweets WHERE owner_id = $1 ORDER BY created_at DESC, id`, owner)
}

func (p *Postgres) UpdateTweetContent(ctx context.Context, id, content string) (*model.Tweet, error) {
	query := `UPDATE tweets SET content = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + tweetColumns
	t, err := scanTweet(p.Pool.QueryRow(ctx, query, id, content))
	if err != nil {
		return nil, mapErr("postgres.UpdateTweetContent", err)
	}
	return t, nil
}

func (p *Postgres) DeleteTweet(ctx context.Context, id string) error {
	return p.execOne(ctx, "postgres.DeleteTweet", `DELETE FROM tweets WHERE id = $1`, id)
}
