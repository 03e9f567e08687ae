// Package postgres provides the PostgreSQL session repository.
//
// Each session is stored as one JSONB document keyed by (user_id, id);
// the document is the single source of truth and the columns exist for
// keying and retention queries only.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/interview-oracle/api/internal/domain"
)

// Schema creates the sessions table. Applied at startup via EnsureSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE INDEX IF NOT EXISTS sessions_user_updated_idx ON sessions (user_id, updated_at DESC);
`

// PgxPool is the minimal pool subset used by the repo for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SessionRepo persists sessions using a pgx pool.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// EnsureSchema applies the sessions schema.
func EnsureSchema(ctx context.Context, p PgxPool) error {
	if _, err := p.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("op=sessions.schema: %w", err)
	}
	return nil
}

// Create stores a new session document.
func (r *SessionRepo) Create(ctx domain.Context, s domain.Session) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, sp := tracer.Start(ctx, "sessions.Create")
	defer sp.End()
	sp.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "sessions"),
	)
	doc, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("op=session.create: marshal: %w", err)
	}
	q := `INSERT INTO sessions (id, user_id, doc, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.Pool.Exec(ctx, q, s.ID, s.UserID, doc, s.Metadata.CreatedAt, s.Metadata.UpdatedAt); err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return s.ID, nil
}

// Get loads one session owned by userID or returns domain.ErrNotFound.
func (r *SessionRepo) Get(ctx domain.Context, userID, id string) (domain.Session, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, sp := tracer.Start(ctx, "sessions.Get")
	defer sp.End()
	sp.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "sessions"),
	)
	q := `SELECT doc FROM sessions WHERE user_id=$1 AND id=$2`
	var doc []byte
	if err := r.Pool.QueryRow(ctx, q, userID, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
		}
		return domain.Session{}, fmt.Errorf("op=session.get: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return domain.Session{}, fmt.Errorf("op=session.get: unmarshal: %w", err)
	}
	return s, nil
}

// List returns the user's sessions, most recently updated first.
func (r *SessionRepo) List(ctx domain.Context, userID string) ([]domain.Session, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, sp := tracer.Start(ctx, "sessions.List")
	defer sp.End()
	sp.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "sessions"),
	)
	q := `SELECT doc FROM sessions WHERE user_id=$1 ORDER BY updated_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=session.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Session
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("op=session.list: scan: %w", err)
		}
		var s domain.Session
		if err := json.Unmarshal(doc, &s); err != nil {
			return nil, fmt.Errorf("op=session.list: unmarshal: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=session.list: rows: %w", err)
	}
	return out, nil
}

// Update replaces a stored session document or returns domain.ErrNotFound.
func (r *SessionRepo) Update(ctx domain.Context, s domain.Session) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, sp := tracer.Start(ctx, "sessions.Update")
	defer sp.End()
	sp.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "sessions"),
	)
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("op=session.update: marshal: %w", err)
	}
	q := `UPDATE sessions SET doc=$1, updated_at=$2 WHERE user_id=$3 AND id=$4`
	tag, err := r.Pool.Exec(ctx, q, doc, timeOrNow(s.Metadata.UpdatedAt), s.UserID, s.ID)
	if err != nil {
		return fmt.Errorf("op=session.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, s.ID)
	}
	return nil
}

// Delete removes a stored session or returns domain.ErrNotFound.
func (r *SessionRepo) Delete(ctx domain.Context, userID, id string) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, sp := tracer.Start(ctx, "sessions.Delete")
	defer sp.End()
	sp.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "sessions"),
	)
	q := `DELETE FROM sessions WHERE user_id=$1 AND id=$2`
	tag, err := r.Pool.Exec(ctx, q, userID, id)
	if err != nil {
		return fmt.Errorf("op=session.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
