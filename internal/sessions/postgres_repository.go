package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores sessions in the relational database. The sessions
// table is unique on (session_date, session_time); one hold per timestamp.
type PostgresRepository struct {
	db pgDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("sessions: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a session, mapping a duplicate timestamp to ErrSlotHeld.
func (r *PostgresRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	query := `
		INSERT INTO sessions (id, session_date, session_time, title, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		session.ID,
		session.Date,
		session.Time,
		session.Title,
		session.CreatedBy,
	).Scan(&session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotHeld
		}
		return fmt.Errorf("sessions: insert failed: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sessions: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TimesOn returns the held times for one date, ordered by time. Sessions have
// no location dimension, so this is all the filter a caller can ask for.
func (r *PostgresRepository) TimesOn(ctx context.Context, date string) ([]string, error) {
	query := `
		SELECT session_time
		FROM sessions
		WHERE session_date = $1
		ORDER BY session_time
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("sessions: times on %s: %w", date, err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sessions: scan time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessions: iterate times: %w", err)
	}
	return times, nil
}

// InRange fetches every held slot whose date falls in the given set, in one
// ranged query.
func (r *PostgresRepository) InRange(ctx context.Context, dates []string) ([]HeldSlot, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	query := `
		SELECT session_date, session_time
		FROM sessions
		WHERE session_date = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, dates)
	if err != nil {
		return nil, fmt.Errorf("sessions: range fetch: %w", err)
	}
	defer rows.Close()

	var slots []HeldSlot
	for rows.Next() {
		var s HeldSlot
		if err := rows.Scan(&s.Date, &s.Time); err != nil {
			return nil, fmt.Errorf("sessions: scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessions: iterate range: %w", err)
	}
	return slots, nil
}

// ExistsAt reports whether a session holds the timestamp, using a count-only query.
func (r *PostgresRepository) ExistsAt(ctx context.Context, date, timeOfDay string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE session_date = $1 AND session_time = $2
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, date, timeOfDay).Scan(&count); err != nil {
		return false, fmt.Errorf("sessions: exists check: %w", err)
	}
	return count > 0, nil
}

// ListRange returns full session rows between two dates inclusive, for admin views.
func (r *PostgresRepository) ListRange(ctx context.Context, from, to string) ([]*Session, error) {
	query := `
		SELECT id, session_date, session_time, title, created_by, created_at
		FROM sessions
		WHERE session_date >= $1 AND session_date <= $2
		ORDER BY session_date, session_time
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("sessions: list range: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Date, &s.Time, &s.Title, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sessions: scan row: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessions: iterate rows: %w", err)
	}
	return out, nil
}
