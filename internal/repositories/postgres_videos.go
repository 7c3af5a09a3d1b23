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

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_file_url, thumbnail_url, title, description, duration, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, video.ID, video.OwnerID, video.VideoFileURL, video.ThumbnailURL, video.Title,
		video.Description, video.Duration, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a raw video record without projections.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, video_file_url, thumbnail_url, title, description, duration, is_published, created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	var video models.Video
	if err := row.Scan(&video.ID, &video.OwnerID, &video.VideoFileURL, &video.ThumbnailURL,
		&video.Title, &video.Description, &video.Duration, &video.IsPublished,
		&video.CreatedAt, &video.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Update modifies an existing video record.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, is_published = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL, video.IsPublished, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video. Its comments and history entries cascade at the
// schema level; like edges referencing it are skipped lazily by the read path.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"title":     "v.title",
	"duration":  "v.duration",
}

// List returns a page of denormalized video views plus the total match count.
// Sorting is deterministic: the requested key plus the id as a tiebreak.
func (r *PostgresVideoRepository) List(ctx context.Context, filter VideoFilter, p pagination.Params) ([]models.VideoView, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	p = p.Normalize()

	where := `TRUE`
	args := []any{}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where += fmt.Sprintf(` AND (v.title ILIKE $%d OR v.description ILIKE $%d)`, len(args), len(args))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where += fmt.Sprintf(` AND v.owner_id = $%d`, len(args))
	}

	sortColumn, ok := videoSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "v.created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	args = append(args, p.Limit, p.Offset())

	query := fmt.Sprintf(`
        SELECT v.id, v.owner_id, v.video_file_url, v.thumbnail_url, v.title, v.description,
               v.duration, v.is_published, v.created_at, v.updated_at,
               o.id, o.username, o.full_name, o.avatar_url,
               (SELECT count(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS like_count,
               FALSE AS is_liked,
               count(*) OVER() AS total_count
        FROM videos v
        LEFT JOIN users o ON o.id = v.owner_id
        WHERE %s
        ORDER BY %s %s, v.id DESC
        LIMIT $%d OFFSET $%d
    `, where, sortColumn, direction, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	return collectVideoViews(rows, "videos")
}

// View builds the single-video projection for a viewer. The like count is
// computed over the current edge set; isLiked is an exact-match lookup for
// the viewer and stays false when viewerID is empty.
func (r *PostgresVideoRepository) View(ctx context.Context, id, viewerID string) (models.VideoView, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.owner_id, v.video_file_url, v.thumbnail_url, v.title, v.description,
               v.duration, v.is_published, v.created_at, v.updated_at,
               o.id, o.username, o.full_name, o.avatar_url,
               (SELECT count(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS like_count,
               EXISTS (
                   SELECT 1 FROM likes l
                   WHERE l.target_kind = 'video' AND l.target_id = v.id AND l.actor_id = $2
               ) AS is_liked
        FROM videos v
        LEFT JOIN users o ON o.id = v.owner_id
        WHERE v.id = $1
    `, id, viewerID)

	view, err := scanVideoView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoView{}, ErrNotFound
		}
		return models.VideoView{}, fmt.Errorf("select video view: %w", err)
	}

	return view, nil
}

type videoViewScanner interface {
	Scan(dest ...any) error
}

func scanVideoView(row videoViewScanner) (models.VideoView, error) {
	var (
		view     models.VideoView
		ownerID  sql.NullString
		username sql.NullString
		fullName sql.NullString
		avatar   sql.NullString
	)

	if err := row.Scan(&view.ID, &view.OwnerID, &view.VideoFileURL, &view.ThumbnailURL,
		&view.Title, &view.Description, &view.Duration, &view.IsPublished,
		&view.CreatedAt, &view.UpdatedAt,
		&ownerID, &username, &fullName, &avatar,
		&view.LikeCount, &view.IsLiked); err != nil {
		return models.VideoView{}, err
	}

	if ownerID.Valid {
		view.Owner = &models.OwnerSummary{
			ID:        ownerID.String,
			Username:  username.String,
			FullName:  fullName.String,
			AvatarURL: avatar.String,
		}
	}

	return view, nil
}

// collectVideoViews drains rows that select video view columns followed by a
// count(*) OVER() total.
func collectVideoViews(rows pgx.Rows, label string) ([]models.VideoView, int, error) {
	var (
		views []models.VideoView
		total int
	)

	for rows.Next() {
		var (
			view     models.VideoView
			ownerID  sql.NullString
			username sql.NullString
			fullName sql.NullString
			avatar   sql.NullString
		)

		if err := rows.Scan(&view.ID, &view.OwnerID, &view.VideoFileURL, &view.ThumbnailURL,
			&view.Title, &view.Description, &view.Duration, &view.IsPublished,
			&view.CreatedAt, &view.UpdatedAt,
			&ownerID, &username, &fullName, &avatar,
			&view.LikeCount, &view.IsLiked, &total); err != nil {
			return nil, 0, fmt.Errorf("scan %s row: %w", label, err)
		}

		if ownerID.Valid {
			view.Owner = &models.OwnerSummary{
				ID:        ownerID.String,
				Username:  username.String,
				FullName:  fullName.String,
				AvatarURL: avatar.String,
			}
		}

		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s: %w", label, err)
	}

	return views, total, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
