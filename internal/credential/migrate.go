package credential

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"qrattendance/internal/logging"
)

// Account is the subset of a user record the migrator reads.
type Account struct {
	ID       string
	Username string
	Password string
}

// AccountStore lists accounts and overwrites their stored password.
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	SetPassword(ctx context.Context, id, password string) error
}

// PartialError lists the accounts a migration run had to skip.
type PartialError struct {
	Failed []error
}

func (e *PartialError) Error() string {
	return errors.Join(e.Failed...).Error()
}

func (e *PartialError) Unwrap() []error {
	return e.Failed
}

// Migrator rewrites plain-text passwords as bcrypt hashes.
type Migrator struct {
	store    AccountStore
	onUpdate func()
}

// NewMigrator creates a migrator. onUpdate, if non-nil, is called once per
// rewritten password.
func NewMigrator(store AccountStore, onUpdate func()) *Migrator {
	return &Migrator{store: store, onUpdate: onUpdate}
}

// Run hashes every stored password that is not already a bcrypt hash and
// returns how many were rewritten. An account that cannot be migrated is
// logged and skipped; the skipped accounts are reported as a *PartialError.
// Running it again is a no-op for everything already hashed.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	l := logging.FromContext(ctx)

	accounts, err := m.store.ListAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}

	migrated := 0
	var errs []error
	for _, a := range accounts {
		if IsHash(a.Password) {
			continue
		}
		hashed, err := Hash(a.Password)
		if err != nil {
			l.Warn("skipping password migration", zap.String("username", a.Username), zap.Error(err))
			errs = append(errs, fmt.Errorf("hash password for %s: %w", a.Username, err))
			continue
		}
		if err := m.store.SetPassword(ctx, a.ID, hashed); err != nil {
			l.Warn("skipping password migration", zap.String("username", a.Username), zap.Error(err))
			errs = append(errs, fmt.Errorf("store password for %s: %w", a.Username, err))
			continue
		}
		migrated++
		if m.onUpdate != nil {
			m.onUpdate()
		}
		l.Info("migrated password", zap.String("username", a.Username))
	}
	if len(errs) > 0 {
		return migrated, &PartialError{Failed: errs}
	}
	return migrated, nil
}
