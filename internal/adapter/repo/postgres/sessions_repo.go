// Package postgres persists sessions as JSONB documents. The full session is
// stored as one document; status and expiry are mirrored into columns so
// cleanup and reporting can query them without unpacking JSON.
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

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// PgxPool is the minimal pool surface the repo needs, satisfied by
// *pgxpool.Pool and by test stubs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SessionRepo persists sessions in PostgreSQL.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// EnsureSchema creates the sessions table if it does not exist.
func (r *SessionRepo) EnsureSchema(ctx domain.Context) error {
	q := `CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		status     TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.Pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("op=session.schema: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.ConversationSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()

	var raw []byte
	row := r.Pool.QueryRow(ctx, `SELECT doc FROM sessions WHERE id=$1`, id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ConversationSession{}, fmt.Errorf("op=session.get: id=%s: %w", id, domain.ErrNotFound)
		}
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	var s domain.ConversationSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: decode: %w", err)
	}
	return s, nil
}

// Save upserts a session document.
func (r *SessionRepo) Save(ctx domain.Context, s domain.ConversationSession) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Save")
	defer span.End()

	if s.ID == "" {
		return fmt.Errorf("op=session.save: empty id: %w", domain.ErrInvalidArgument)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("op=session.save: encode: %w", err)
	}
	q := `INSERT INTO sessions (id, doc, status, expires_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
			doc = EXCLUDED.doc,
			status = EXCLUDED.status,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.Pool.Exec(ctx, q, s.ID, raw, s.Status, s.ExpiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=session.save: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *SessionRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Delete")
	defer span.End()

	tag, err := r.Pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=session.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.delete: id=%s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll loads every stored session document.
func (r *SessionRepo) ListAll(ctx domain.Context) ([]domain.ConversationSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.ListAll")
	defer span.End()

	rows, err := r.Pool.Query(ctx, `SELECT doc FROM sessions ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("op=session.list: %w", err)
	}
	defer rows.Close()

	var out []domain.ConversationSession
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("op=session.list: scan: %w", err)
		}
		var s domain.ConversationSession
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("op=session.list: decode: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=session.list: rows: %w", err)
	}
	return out, nil
}
