package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidtube/backend/internal/model"
)

var videoColumnNames = []string{
	"id", "owner_id", "video_url", "thumbnail_url", "title", "description",
	"duration", "views", "is_published", "created_at", "updated_at",
}

var videoColumns = strings.Join(videoColumnNames, ", ")

func prefixedVideoColumns(alias string) string {
	cols := make([]string, len(videoColumnNames))
	for i, c := range videoColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func videoScanTargets(v *model.Video) []any {
	return []any{
		&v.ID,
		&v.Owner,
		&v.VideoFile,
		&v.Thumbnail,
		&v.Title,
		&v.Description,
		&v.Duration,
		&v.Views,
		&v.IsPublished,
		&v.CreatedAt,
		&v.UpdatedAt,
	}
}

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	if err := row.Scan(videoScanTargets(&v)...); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows) ([]model.Video, error) {
	defer rows.Close()
	videos := make([]model.Video, 0)
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(videoScanTargets(&v)...); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (p *Postgres) CreateVideo(ctx context.Context, v model.NewVideo) (*model.Video, error) {
	query := `
		INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + videoColumns
	video, err := scanVideo(p.Pool.QueryRow(ctx, query,
		uuid.NewString(),
		v.Owner,
		v.VideoFile,
		v.Thumbnail,
		v.Title,
		v.Description,
		v.Duration,
		v.IsPublished,
	))
	if err != nil {
		return nil, mapErr("postgres.CreateVideo", err)
	}
	return video, nil
}

func (p *Postgres) GetVideoByID(ctx context.Context, id string) (*model.Video, error) {
	video, err := scanVideo(p.Pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("postgres.GetVideoByID", err)
	}
	return video, nil
}

// ListPublishedVideos returns one page of published videos, newest first,
// together with the total number of published videos.
func (p *Postgres) ListPublishedVideos(ctx context.Context, page model.Page) ([]model.Video, int64, error) {
	const op = "postgres.ListPublishedVideos"

	var total int64
	if err := p.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE is_published`).Scan(&total); err != nil {
		return nil, 0, mapErr(op, err)
	}

	rows, err := p.Pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE is_published
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Skip())
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	return videos, total, nil
}

func (p *Postgres) ListVideosByOwner(ctx context.Context, owner string) ([]model.Video, error) {
	const op = "postgres.ListVideosByOwner"

	rows, err := p.Pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`, owner)
	if err != nil {
		return nil, mapErr(op, err)
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return videos, nil
}

func (p *Postgres) FindOwnedVideoByTitle(ctx context.Context, owner, title string) (*model.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE owner_id = $1 AND title = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	video, err := scanVideo(p.Pool.QueryRow(ctx, query, owner, title))
	if err != nil {
		return nil, mapErr("postgres.FindOwnedVideoByTitle", err)
	}
	return video, nil
}

func (p *Postgres) UpdateVideoFile(ctx context.Context, id string, u model.VideoFileUpdate) (*model.Video, error) {
	query := `
		UPDATE videos
		SET title = COALESCE(NULLIF($2, ''), title),
			description = COALESCE(NULLIF($3, ''), description),
			video_url = $4,
			duration = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + videoColumns
	video, err := scanVideo(p.Pool.QueryRow(ctx, query, id, u.Title, u.Description, u.VideoFile, u.Duration))
	if err != nil {
		return nil, mapErr("postgres.UpdateVideoFile", err)
	}
	return video, nil
}

func (p *Postgres) UpdateVideoThumbnail(ctx context.Context, id, thumbnailURL string) (*model.Video, error) {
	query := `UPDATE videos SET thumbnail_url = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + videoColumns
	video, err := scanVideo(p.Pool.QueryRow(ctx, query, id, thumbnailURL))
	if err != nil {
		return nil, mapErr("postgres.UpdateVideoThumbnail", err)
	}
	return video, nil
}

// DeleteVideo removes the video; its comments and likes go with it through
// the foreign keys.
func (p *Postgres) DeleteVideo(ctx context.Context, id string) error {
	return p.execOne(ctx, "postgres.DeleteVideo", `DELETE FROM videos WHERE id = $1`, id)
}

func (p *Postgres) IncrementViews(ctx context.Context, id string) (*model.Video, error) {
	query := `UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING ` + videoColumns
	video, err := scanVideo(p.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr("postgres.IncrementViews", err)
	}
	return video, nil
}
