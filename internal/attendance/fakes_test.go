package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"qrattendance/internal/clock"
	"qrattendance/internal/queue"
	"qrattendance/internal/session"
	"qrattendance/internal/user"
)

type memLogs struct {
	mu   sync.Mutex
	logs []Log
	// skipLookup makes FindByUserAndDate miss, as a concurrent submit would.
	skipLookup bool
}

func (m *memLogs) Insert(ctx context.Context, l *Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.logs {
		if existing.UserID == l.UserID && existing.Date.Equal(l.Date) {
			return ErrAlreadyMarked
		}
	}
	if l.ID == "" {
		l.ID = "log-" + l.UserID + "-" + l.Date.Format(clock.DateLayout)
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memLogs) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipLookup {
		return nil, nil
	}
	for _, l := range m.logs {
		if l.UserID == userID && l.Date.Equal(date) {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (m *memLogs) ListByDate(ctx context.Context, date time.Time) ([]Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Log
	for _, l := range m.logs {
		if l.Date.Equal(date) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLogs) ListByUser(ctx context.Context, userID string) ([]Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Log
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLogs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

type memSessions map[string]session.Session

func (m memSessions) FindByDate(ctx context.Context, date time.Time) (*session.Session, error) {
	s, ok := m[date.Format(clock.DateLayout)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

type memUsers []user.User

func (m memUsers) FindByID(ctx context.Context, id string) (*user.User, error) {
	for _, u := range m {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m memUsers) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m memUsers) FindByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range m {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []queue.Message
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg queue.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}
