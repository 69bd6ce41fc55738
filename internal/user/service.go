package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"qrattendance/internal/credential"
	"qrattendance/internal/logging"
	"qrattendance/internal/metrics"
)

type Service interface {
	Add(ctx context.Context, req CreateUserRequest) (CreateUserResponse, error)
	List(ctx context.Context) ([]UserResponse, error)
	Delete(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, id, newPassword string) error
	Login(ctx context.Context, username, password string) (LoginResponse, error)
	GetByUsername(ctx context.Context, username string) (UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	MigratePasswords(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	allowLegacy bool
}

// NewService creates the user directory. When allowLegacyLogin is set, login
// accepts stored values that have not been migrated to bcrypt yet.
func NewService(repo Repository, allowLegacyLogin bool) Service {
	return &service{repo: repo, allowLegacy: allowLegacyLogin}
}

func (s *service) Add(ctx context.Context, req CreateUserRequest) (CreateUserResponse, error) {
	l := logging.FromContext(ctx)

	username := strings.TrimSpace(req.Username)
	role := Role(strings.TrimSpace(req.Role))
	if username == "" || strings.TrimSpace(req.Password) == "" || role == "" {
		return CreateUserResponse{}, ErrMissingFields
	}
	if !role.Valid() {
		return CreateUserResponse{}, ErrInvalidRole
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return CreateUserResponse{}, err
	}
	if existing != nil {
		return CreateUserResponse{}, ErrUsernameTaken
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return CreateUserResponse{}, err
	}

	u := &User{Username: username, Password: hashed, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return CreateUserResponse{}, err
	}

	l.Info("user created", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return CreateUserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Message:  "User created successfully",
	}, nil
}

func (s *service) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("user deleted", zap.String("username", u.Username))
	return nil
}

// ChangePassword overwrites the stored password. The current password is not
// checked; callers are administrators.
func (s *service) ChangePassword(ctx context.Context, id, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrPasswordRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, hashed)
}

func (s *service) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	l := logging.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.Logins.WithLabelValues(metrics.ResultRejected).Inc()
		return LoginResponse{}, ErrCredentialsRequired
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return LoginResponse{}, err
	}
	if u == nil {
		rejectUnknown(password)
		l.Debug("login failed: unknown user", zap.String("username", username))
		metrics.Logins.WithLabelValues(metrics.ResultRejected).Inc()
		return LoginResponse{}, ErrInvalidCredentials
	}
	if !credential.Matches(password, u.Password, s.allowLegacy) {
		l.Debug("login failed: wrong password", zap.String("username", username))
		metrics.Logins.WithLabelValues(metrics.ResultRejected).Inc()
		return LoginResponse{}, ErrInvalidCredentials
	}
	if !credential.IsHash(u.Password) {
		l.Warn("login accepted a legacy plain-text password", zap.String("username", username))
	}

	metrics.Logins.WithLabelValues(metrics.ResultOK).Inc()
	l.Info("login succeeded", zap.String("username", username))
	return LoginResponse{ID: u.ID, Username: u.Username, Role: u.Role}, nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (UserResponse, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return UserResponse{}, err
	}
	if u == nil {
		return UserResponse{}, ErrUserNotFound
	}
	return mapToResponse(*u), nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	if u == nil {
		return UserResponse{}, ErrUserNotFound
	}
	return mapToResponse(*u), nil
}

// MigratePasswords hashes every legacy plain-text password in place.
func (s *service) MigratePasswords(ctx context.Context) (int, error) {
	return credential.NewMigrator(s.repo, metrics.PasswordsMigrated.Inc).Run(ctx)
}

// rejectUnknown burns one bcrypt compare for a username that does not exist.
var rejectUnknown = credential.Reject

func hashPassword(raw string) (string, error) {
	hashed, err := credential.Hash(raw)
	if errors.Is(err, credential.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return hashed, err
}

func mapToResponse(u User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}
