package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/vidtube/backend/internal/model"
)

func (p *Postgres) CreateSubscription(ctx context.Context, subscriber, channel string) (*model.Subscription, error) {
	var s model.Subscription
	err := p.Pool.QueryRow(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id)
		VALUES ($1, $2, $3)
		RETURNING id, subscriber_id, channel_id, created_at
	`, uuid.NewString(), subscriber, channel).Scan(&s.ID, &s.Subscriber, &s.Channel, &s.CreatedAt)
	if err != nil {
		return nil, mapErr("postgres.CreateSubscription", err)
	}
	return &s, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, subscriber, channel string) error {
	return p.execOne(ctx, "postgres.DeleteSubscription",
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriber, channel,
	)
}

func (p *Postgres) CountSubscribers(ctx context.Context, channel string) (int64, error) {
	var n int64
	if err := p.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channel).Scan(&n); err != nil {
		return 0, mapErr("postgres.CountSubscribers", err)
	}
	return n, nil
}

func (p *Postgres) ListSubscribedChannels(ctx context.Context, subscriber string) ([]model.UserSummary, error) {
	const op = "postgres.ListSubscribedChannels"

	rows, err := p.Pool.Query(ctx, `
		SELECT u.id, u.username, u.fullname, u.avatar
		FROM subscriptions s
		JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC
	`, subscriber)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	channels := make([]model.UserSummary, 0)
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Fullname, &u.Avatar); err != nil {
			return nil, mapErr(op, err)
		}
		channels = append(channels, u)
	}
	return channels, mapErr(op, rows.Err())
}
