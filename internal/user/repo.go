package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qrattendance/internal/credential"
	"qrattendance/internal/store"
)

// Repository persists users. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	FindByRole(ctx context.Context, role Role) ([]User, error)
	SetPassword(ctx context.Context, id, password string) error
	Delete(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]credential.Account, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectUser = `SELECT id, username, password, role, created_at FROM users`

// Create inserts u, assigning its id and creation time.
func (r *repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.Password, string(u.Role), u.CreatedAt)
	if store.IsUniqueViolation(err, store.ConstraintUsername) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE username = $1`, username)
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	return r.findMany(ctx, selectUser+` ORDER BY username`)
}

func (r *repository) FindByRole(ctx context.Context, role Role) ([]User, error) {
	return r.findMany(ctx, selectUser+` WHERE role = $1 ORDER BY username`, string(role))
}

func (r *repository) SetPassword(ctx context.Context, id, password string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, password)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListAccounts exposes stored credentials to the password migrator.
func (r *repository) ListAccounts(ctx context.Context) ([]credential.Account, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]credential.Account, len(users))
	for i, u := range users {
		accounts[i] = credential.Account{ID: u.ID, Username: u.Username, Password: u.Password}
	}
	return accounts, nil
}

func (r *repository) findOne(ctx context.Context, query string, args ...any) (*User, error) {
	var (
		u    User
		role string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.Password, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Role = Role(role)
	return &u, nil
}

func (r *repository) findMany(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var (
			u    User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}
