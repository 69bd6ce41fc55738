package user

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"qrattendance/internal/credential"
)

// memRepo is an in-memory Repository that enforces username uniqueness the
// way the users table does.
type memRepo struct {
	users   map[string]User
	findErr error
}

func newMemRepo(users ...User) *memRepo {
	r := &memRepo{users: map[string]User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindAll(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memRepo) FindByRole(ctx context.Context, role Role) ([]User, error) {
	all, _ := r.FindAll(ctx)
	var out []User
	for _, u := range all {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memRepo) SetPassword(ctx context.Context, id, password string) error {
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Password = password
	r.users[id] = u
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) ListAccounts(ctx context.Context) ([]credential.Account, error) {
	all, _ := r.FindAll(ctx)
	out := make([]credential.Account, len(all))
	for i, u := range all {
		out[i] = credential.Account{ID: u.ID, Username: u.Username, Password: u.Password}
	}
	return out, nil
}
