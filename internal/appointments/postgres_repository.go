package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veracare-health/booking-platform/internal/schedule"
)

// BookedSlot is one consumed appointment slot, as fetched for summary building.
type BookedSlot struct {
	Date        string
	Time        string
	Method      schedule.Method
	LocationKey string
}

type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database. The
// appointments table carries a uniqueness constraint on
// (appointment_date, appointment_time, method, location_key); that constraint,
// not the availability pre-check, is the true source of mutual exclusion
// between concurrent bookers.
type PostgresRepository struct {
	db pgDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new appointment row. A unique violation on the slot
// constraint is reported as ErrSlotTaken, not a generic failure.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	query := `
		INSERT INTO appointments (id, appointment_date, appointment_time, method, location_key, location_id, patient_name, patient_email, patient_phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.Date,
		appt.Time,
		string(appt.Method),
		appt.LocationKey(),
		appt.LocationID,
		appt.PatientName,
		appt.PatientEmail,
		appt.PatientPhone,
		appt.Notes,
	).Scan(&appt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT id, appointment_date, appointment_time, method, location_id, patient_name, patient_email, patient_phone, notes, created_at
		FROM appointments
		WHERE id = $1
	`
	var appt Appointment
	var method string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.Date,
		&appt.Time,
		&method,
		&appt.LocationID,
		&appt.PatientName,
		&appt.PatientEmail,
		&appt.PatientPhone,
		&appt.Notes,
		&appt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	appt.Method = schedule.Method(method)
	return &appt, nil
}

// TimesOn returns the booked times for one date and normalized location key,
// ordered by time.
func (r *PostgresRepository) TimesOn(ctx context.Context, date string, method schedule.Method, locationKey string) ([]string, error) {
	query := `
		SELECT appointment_time
		FROM appointments
		WHERE appointment_date = $1 AND method = $2 AND location_key = $3
		ORDER BY appointment_time
	`
	rows, err := r.db.Query(ctx, query, date, string(method), locationKey)
	if err != nil {
		return nil, fmt.Errorf("appointments: times on %s: %w", date, err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("appointments: scan time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate times: %w", err)
	}
	return times, nil
}

// InRange fetches every booked slot whose date falls in the given set, in one
// ranged query. Used by the summary builder; per-date loops belong to the
// caller's in-memory pass, never to the store.
func (r *PostgresRepository) InRange(ctx context.Context, dates []string) ([]BookedSlot, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	query := `
		SELECT appointment_date, appointment_time, method, location_key
		FROM appointments
		WHERE appointment_date = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, dates)
	if err != nil {
		return nil, fmt.Errorf("appointments: range fetch: %w", err)
	}
	defer rows.Close()

	var slots []BookedSlot
	for rows.Next() {
		var s BookedSlot
		var method string
		if err := rows.Scan(&s.Date, &s.Time, &method, &s.LocationKey); err != nil {
			return nil, fmt.Errorf("appointments: scan slot: %w", err)
		}
		s.Method = schedule.Method(method)
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate range: %w", err)
	}
	return slots, nil
}

// ExistsAt reports whether a slot is already consumed, using a count-only query.
func (r *PostgresRepository) ExistsAt(ctx context.Context, date, timeOfDay string, method schedule.Method, locationKey string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE appointment_date = $1 AND appointment_time = $2 AND method = $3 AND location_key = $4
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, date, timeOfDay, string(method), locationKey).Scan(&count); err != nil {
		return false, fmt.Errorf("appointments: exists check: %w", err)
	}
	return count > 0, nil
}

// ListForDate returns full appointment rows for one date, for admin views.
func (r *PostgresRepository) ListForDate(ctx context.Context, date string) ([]*Appointment, error) {
	query := `
		SELECT id, appointment_date, appointment_time, method, location_id, patient_name, patient_email, patient_phone, notes, created_at
		FROM appointments
		WHERE appointment_date = $1
		ORDER BY appointment_time
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for date: %w", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		var appt Appointment
		var method string
		if err := rows.Scan(
			&appt.ID,
			&appt.Date,
			&appt.Time,
			&method,
			&appt.LocationID,
			&appt.PatientName,
			&appt.PatientEmail,
			&appt.PatientPhone,
			&appt.Notes,
			&appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		appt.Method = schedule.Method(method)
		appts = append(appts, &appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate rows: %w", err)
	}
	return appts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
