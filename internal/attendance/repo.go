package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qrattendance/internal/clock"
	"qrattendance/internal/store"
)

// Repository persists attendance logs in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectLog = `SELECT id, user_id, log_date, checked_in_at FROM attendance_logs`

// Insert writes a new log. A second log for the same user and date yields
// ErrAlreadyMarked.
func (r *Repository) Insert(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (id, user_id, log_date, checked_in_at)
		VALUES ($1, $2, $3, $4)
	`, l.ID, l.UserID, l.Date.Format(clock.DateLayout), l.CheckedInAt)
	if store.IsUniqueViolation(err, store.ConstraintLogUserDate) {
		return ErrAlreadyMarked
	}
	if err != nil {
		return fmt.Errorf("insert attendance log: %w", err)
	}
	return nil
}

// FindByUserAndDate returns (nil, nil) when the user has no log for date.
func (r *Repository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Log, error) {
	row := r.db.QueryRowContext(ctx, selectLog+` WHERE user_id = $1 AND log_date = $2`,
		userID, date.Format(clock.DateLayout))
	var l Log
	if err := row.Scan(&l.ID, &l.UserID, &l.Date, &l.CheckedInAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query attendance log: %w", err)
	}
	return &l, nil
}

func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]Log, error) {
	return r.list(ctx, selectLog+` WHERE log_date = $1 ORDER BY checked_in_at`, date.Format(clock.DateLayout))
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Log, error) {
	return r.list(ctx, selectLog+` WHERE user_id = $1 ORDER BY log_date, checked_in_at`, userID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance logs: %w", err)
	}
	defer rows.Close()

	var logs []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Date, &l.CheckedInAt); err != nil {
			return nil, fmt.Errorf("scan attendance log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
