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

// PostgresSubscriptionRepository is the PostgreSQL-backed edge store for
// channel subscriptions. The unique index on (subscriber_id, channel_id)
// guarantees at most one edge per pair under concurrent writers.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription edge store backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Create persists a new subscription edge. A duplicate pair yields ErrConflict.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// Find returns the edge for the exact (subscriber, channel) pair.
func (r *PostgresSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, subscriber_id, channel_id, created_at
        FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}

	return sub, nil
}

// DeleteMatching removes the edge for the pair in a single atomic statement
// and returns the removed row; ErrNotFound when no edge existed.
func (r *PostgresSubscriptionRepository) DeleteMatching(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
        RETURNING id, subscriber_id, channel_id, created_at
    `, subscriberID, channelID)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("delete subscription: %w", err)
	}

	return sub, nil
}

// ListChannels returns a page of the subscriber's channels joined with
// trimmed channel profiles, newest subscription first. A channel whose
// account no longer resolves is listed with a nil profile rather than
// failing the request.
func (r *PostgresSubscriptionRepository) ListChannels(ctx context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	p = p.Normalize()

	rows, err := conn.Query(ctx, `
        SELECT s.id, s.created_at,
               c.id, c.username, c.full_name, c.avatar_url,
               count(*) OVER() AS total_count
        FROM subscriptions s
        LEFT JOIN users c ON c.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC, s.id DESC
        LIMIT $2 OFFSET $3
    `, subscriberID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var (
		channels []models.SubscribedChannel
		total    int
	)

	for rows.Next() {
		var (
			entry     models.SubscribedChannel
			channelID sql.NullString
			username  sql.NullString
			fullName  sql.NullString
			avatar    sql.NullString
		)

		if err := rows.Scan(&entry.SubscriptionID, &entry.SubscribedAt,
			&channelID, &username, &fullName, &avatar, &total); err != nil {
			return nil, 0, fmt.Errorf("scan subscription row: %w", err)
		}

		if channelID.Valid {
			entry.Channel = &models.OwnerSummary{
				ID:        channelID.String,
				Username:  username.String,
				FullName:  fullName.String,
				AvatarURL: avatar.String,
			}
		}

		channels = append(channels, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return channels, total, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
