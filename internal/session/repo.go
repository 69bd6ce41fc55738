package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qrattendance/internal/clock"
	"qrattendance/internal/store"
)

// Repository persists attendance sessions. FindByDate returns (nil, nil)
// when no session exists for the date.
type Repository interface {
	FindByDate(ctx context.Context, date time.Time) (*Session, error)
	CreateIfAbsent(ctx context.Context, s *Session) (bool, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token, session_date, created_at
		FROM attendance_sessions
		WHERE session_date = $1
	`, date.Format(clock.DateLayout))
	var s Session
	if err := row.Scan(&s.ID, &s.Token, &s.Date, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &s, nil
}

// CreateIfAbsent inserts s unless a session already exists for its date.
// It reports false, without error, when another insert won the date.
func (r *repository) CreateIfAbsent(ctx context.Context, s *Session) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_sessions (id, token, session_date)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT `+store.ConstraintSessionDate+` DO NOTHING
		RETURNING created_at
	`, s.ID, s.Token, s.Date.Format(clock.DateLayout))
	if err := row.Scan(&s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert session: %w", err)
	}
	return true, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoSessionToDelete
	}
	return nil
}
