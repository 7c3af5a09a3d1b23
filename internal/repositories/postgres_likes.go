package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// PostgresLikeRepository is the PostgreSQL-backed edge store for likes. The
// unique index on (actor_id, target_kind, target_id) makes racing creates for
// the same triple mutually exclusive at the storage layer.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like edge store backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Create persists a new like edge. A duplicate (actor, target) triple yields
// ErrConflict.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, actor_id, target_kind, target_id, snapshot_title, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, like.ID, like.ActorID, string(like.Target.Kind), like.Target.ID, like.SnapshotTitle, like.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// Find returns the edge for the exact (actor, target) pair.
func (r *PostgresLikeRepository) Find(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, actor_id, target_kind, target_id, snapshot_title, created_at
        FROM likes
        WHERE actor_id = $1 AND target_kind = $2 AND target_id = $3
    `, actorID, string(target.Kind), target.ID)

	like, err := scanLike(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, ErrNotFound
		}
		return models.Like{}, fmt.Errorf("select like: %w", err)
	}

	return like, nil
}

// DeleteMatching removes the edge for the pair in a single atomic statement
// and returns the removed row. ErrNotFound means no edge existed at the time
// of the delete.
func (r *PostgresLikeRepository) DeleteMatching(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        DELETE FROM likes
        WHERE actor_id = $1 AND target_kind = $2 AND target_id = $3
        RETURNING id, actor_id, target_kind, target_id, snapshot_title, created_at
    `, actorID, string(target.Kind), target.ID)

	like, err := scanLike(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, ErrNotFound
		}
		return models.Like{}, fmt.Errorf("delete like: %w", err)
	}

	return like, nil
}

// CountForTarget counts edges referencing the target over the current edge set.
func (r *PostgresLikeRepository) CountForTarget(ctx context.Context, target models.LikeTarget) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	err = conn.QueryRow(ctx, `
        SELECT count(*) FROM likes WHERE target_kind = $1 AND target_id = $2
    `, string(target.Kind), target.ID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}

// ListLikedVideos returns a page of the actor's video likes joined with video
// summaries, newest like first. A like whose video has been deleted keeps its
// row in the listing and falls back to the stored snapshot title.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	p = p.Normalize()

	rows, err := conn.Query(ctx, `
        SELECT lk.id, lk.created_at, lk.snapshot_title,
               v.id, v.title, v.video_file_url, v.thumbnail_url,
               count(*) OVER() AS total_count
        FROM likes lk
        LEFT JOIN videos v ON v.id = lk.target_id
        WHERE lk.actor_id = $1 AND lk.target_kind = 'video'
        ORDER BY lk.created_at DESC, lk.id DESC
        LIMIT $2 OFFSET $3
    `, actorID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var (
		liked []models.LikedVideo
		total int
	)

	for rows.Next() {
		var (
			entry     models.LikedVideo
			videoID   sql.NullString
			title     sql.NullString
			fileURL   sql.NullString
			thumbnail sql.NullString
		)

		if err := rows.Scan(&entry.LikeID, &entry.LikedAt, &entry.SnapshotTitle,
			&videoID, &title, &fileURL, &thumbnail, &total); err != nil {
			return nil, 0, fmt.Errorf("scan liked video row: %w", err)
		}

		if videoID.Valid {
			entry.Video = &models.VideoSummary{
				ID:           videoID.String,
				Title:        title.String,
				VideoFileURL: fileURL.String,
				ThumbnailURL: thumbnail.String,
			}
		}

		liked = append(liked, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate liked videos: %w", err)
	}

	return liked, total, nil
}

func scanLike(row pgx.Row) (models.Like, error) {
	var (
		like models.Like
		kind string
	)
	if err := row.Scan(&like.ID, &like.ActorID, &kind, &like.Target.ID, &like.SnapshotTitle, &like.CreatedAt); err != nil {
		return models.Like{}, err
	}
	like.Target.Kind = models.TargetKind(kind)
	return like, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
