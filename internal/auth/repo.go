package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository records console logins for auditing.
type Repository interface {
	CreateSession(ctx context.Context, rec SessionRecord) error
	EndSession(ctx context.Context, id string) error
}

// SessionRecord is one console login.
type SessionRecord struct {
	ID        string
	UserID    int64
	Username  string
	Role      string
	IP        string
	UserAgent string
	ExpiresAt time.Time
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const createSessionSQL = `INSERT INTO console_sessions (id, user_id, username, role, ip, user_agent, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, role = EXCLUDED.role, expires_at = EXCLUDED.expires_at, ended_at = NULL`

const endSessionSQL = `UPDATE console_sessions SET ended_at = $2 WHERE id = $1 AND ended_at IS NULL`

// CreateSession persists a login.
func (r *PGRepository) CreateSession(ctx context.Context, rec SessionRecord) error {
	_, err := r.pool.Exec(ctx, createSessionSQL,
		rec.ID,
		rec.UserID,
		rec.Username,
		rec.Role,
		pgtype.Text{String: rec.IP, Valid: rec.IP != ""},
		pgtype.Text{String: rec.UserAgent, Valid: rec.UserAgent != ""},
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
		pgtype.Timestamptz{Time: rec.ExpiresAt.UTC(), Valid: true},
	)
	return err
}

// EndSession stamps the logout time of a login.
func (r *PGRepository) EndSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, endSessionSQL, id, pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true})
	return err
}

// NopRepository discards audit records. It is used when no database is
// configured.
type NopRepository struct{}

// CreateSession implements Repository.
func (NopRepository) CreateSession(context.Context, SessionRecord) error { return nil }

// EndSession implements Repository.
func (NopRepository) EndSession(context.Context, string) error { return nil }

var (
	_ Repository = (*PGRepository)(nil)
	_ Repository = NopRepository{}
)
