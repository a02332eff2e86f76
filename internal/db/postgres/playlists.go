package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidtube/backend/internal/model"
)

const playlistColumns = `id, name, description, videos, owner_id, created_at, updated_at`

func scanPlaylist(row pgx.Row) (*model.Playlist, error) {
	var pl model.Playlist
	if err := row.Scan(&pl.ID, &pl.Name, &pl.Description, &pl.Videos, &pl.Owner, &pl.CreatedAt, &pl.UpdatedAt); err != nil {
		return nil, err
	}
	if pl.Videos == nil {
		pl.Videos = []string{}
	}
	return &pl, nil
}

func (p *Postgres) CreatePlaylist(ctx context.Context, owner, name, description string, videos []string) (*model.Playlist, error) {
	if videos == nil {
		videos = []string{}
	}
	query := `
		INSERT INTO playlists (id, name, description, videos, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + playlistColumns
	pl, err := scanPlaylist(p.Pool.QueryRow(ctx, query, uuid.NewString(), name, description, videos, owner))
	if err != nil {
		return nil, mapErr("postgres.CreatePlaylist", err)
	}
	return pl, nil
}

func (p *Postgres) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	pl, err := scanPlaylist(p.Pool.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("postgres.GetPlaylist", err)
	}
	return pl, nil
}

func (p *Postgres) ListPlaylistsByOwner(ctx context.Context, owner string) ([]model.Playlist, error) {
	const op = "postgres.ListPlaylistsByOwner"

	rows, err := p.Pool.Query(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`, owner)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	playlists := make([]model.Playlist, 0)
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		playlists = append(playlists, *pl)
	}
	return playlists, mapErr(op, rows.Err())
}

// AddVideoToPlaylist appends videoID unless the playlist already holds it.
func (p *Postgres) AddVideoToPlaylist(ctx context.Context, id, videoID string) (*model.Playlist, error) {
	query := `
		UPDATE playlists
		SET videos = CASE WHEN $2::text = ANY(videos) THEN videos ELSE array_append(videos, $2::text) END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + playlistColumns
	pl, err := scanPlaylist(p.Pool.QueryRow(ctx, query, id, videoID))
	if err != nil {
		return nil, mapErr("postgres.AddVideoToPlaylist", err)
	}
	return pl, nil
}

func (p *Postgres) UpdatePlaylist(ctx context.Context, id, name, description string) (*model.Playlist, error) {
	query := `
		UPDATE playlists
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + playlistColumns
	pl, err := scanPlaylist(p.Pool.QueryRow(ctx, query, id, name, description))
	if err != nil {
		return nil, mapErr("postgres.UpdatePlaylist", err)
	}
	return pl, nil
}

func (p *Postgres) DeletePlaylist(ctx context.Context, id string) error {
	return p.execOne(ctx, "postgres.DeletePlaylist", `DELETE FROM playlists WHERE id = $1`, id)
}
