package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neurevia/portal-gateway/internal/domain"
)

// AccessLogRepository stores the access audit trail.
type AccessLogRepository interface {
	CreateBatch(ctx context.Context, entries []domain.AccessLogEntry) error
	ListRecent(ctx context.Context, filter domain.AccessLogFilter) ([]domain.AccessLogEntry, error)
}

type accessLogRepository struct {
	pool *pgxpool.Pool
}

// NewAccessLogRepository builds repository.
func NewAccessLogRepository(pool *pgxpool.Pool) AccessLogRepository {
	return &accessLogRepository{pool: pool}
}

func (r *accessLogRepository) CreateBatch(ctx context.Context, entries []domain.AccessLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const query = `
        INSERT INTO access_log (event_id, kind, path, path_class, action, location, username, role, client_ip, request_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (event_id) DO NOTHING`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.EventID,
			string(e.Kind),
			e.Path,
			string(e.PathClass),
			e.Action,
			e.Location,
			e.Username,
			string(e.Role),
			e.ClientIP,
			e.RequestID,
			e.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	for i := range entries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert access log %s: %w", entries[i].EventID, err)
		}
	}
	return results.Close()
}

// ListRecent returns the newest entries first.
func (r *accessLogRepository) ListRecent(ctx context.Context, filter domain.AccessLogFilter) ([]domain.AccessLogEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, event_id::text, kind, path, path_class, action, location, username, role, client_ip, request_id, created_at
        FROM access_log
        WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR username = $2)
        ORDER BY created_at DESC, id DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, string(filter.Kind), filter.Username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AccessLogEntry
	for rows.Next() {
		var (
			e     domain.AccessLogEntry
			k     string
			class string
			role  string
		)
		if err := rows.Scan(
			&e.ID,
			&e.EventID,
			&k,
			&e.Path,
			&class,
			&e.Action,
			&e.Location,
			&e.Username,
			&role,
			&e.ClientIP,
			&e.RequestID,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Kind = domain.AccessKind(k)
		e.PathClass = domain.PathClass(class)
		e.Role = domain.Role(role)
		result = append(result, e)
	}
	return result, rows.Err()
}
