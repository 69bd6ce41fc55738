package attendance

import (
	"context"
	"crypto/subtle"
	"time"

	"go.uber.org/zap"

	"qrattendance/internal/clock"
	"qrattendance/internal/logging"
	"qrattendance/internal/metrics"
	"qrattendance/internal/queue"
	"qrattendance/internal/session"
	"qrattendance/internal/user"
)

// LogStore is the persistence the recorder needs. *Repository implements it.
type LogStore interface {
	Insert(ctx context.Context, l *Log) error
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Log, error)
	ListByDate(ctx context.Context, date time.Time) ([]Log, error)
	ListByUser(ctx context.Context, userID string) ([]Log, error)
}

// SessionFinder resolves the session for a date; (nil, nil) when absent.
type SessionFinder interface {
	FindByDate(ctx context.Context, date time.Time) (*session.Session, error)
}

// UserFinder resolves users; lookups return (nil, nil) when absent.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByRole(ctx context.Context, role user.Role) ([]user.User, error)
}

// Service validates submissions against today's session and builds rosters.
type Service struct {
	logs      LogStore
	sessions  SessionFinder
	users     UserFinder
	publisher queue.Publisher
	clock     clock.Clock
}

// NewService wires the recorder. publisher may be nil, in which case no
// events are emitted.
func NewService(logs LogStore, sessions SessionFinder, users UserFinder, publisher queue.Publisher, clk clock.Clock) *Service {
	return &Service{logs: logs, sessions: sessions, users: users, publisher: publisher, clock: clk}
}

// Submit records username's attendance for today when token matches today's
// session token.
func (s *Service) Submit(ctx context.Context, username, token string) (SubmitResponse, error) {
	resp, err := s.submit(ctx, username, token)
	switch {
	case err == nil:
		metrics.Submissions.WithLabelValues(metrics.ResultOK).Inc()
	case isRejection(err):
		metrics.Submissions.WithLabelValues(metrics.ResultRejected).Inc()
	default:
		metrics.Submissions.WithLabelValues(metrics.ResultError).Inc()
	}
	return resp, err
}

func (s *Service) submit(ctx context.Context, username, token string) (SubmitResponse, error) {
	l := logging.FromContext(ctx)
	now := s.clock.Now()
	today := clock.DateOf(now)

	sess, err := s.sessions.FindByDate(ctx, today)
	if err != nil {
		return SubmitResponse{}, err
	}
	if sess == nil {
		return SubmitResponse{}, ErrNoSession
	}
	if subtle.ConstantTimeCompare([]byte(sess.Token), []byte(token)) != 1 {
		l.Debug("attendance rejected: token mismatch", zap.String("username", username))
		return SubmitResponse{}, ErrInvalidToken
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return SubmitResponse{}, err
	}
	if u == nil {
		return SubmitResponse{}, user.ErrUserNotFound
	}

	existing, err := s.logs.FindByUserAndDate(ctx, u.ID, today)
	if err != nil {
		return SubmitResponse{}, err
	}
	if existing != nil {
		return SubmitResponse{}, ErrAlreadyMarked
	}

	entry := &Log{UserID: u.ID, Date: today, CheckedInAt: now}
	if err := s.logs.Insert(ctx, entry); err != nil {
		return SubmitResponse{}, err
	}

	at := now.Format(clock.TimeLayout)
	l.Info("attendance marked",
		zap.String("username", u.Username),
		zap.String("date", today.Format(clock.DateLayout)),
		zap.String("time", at),
	)
	s.publish(ctx, queue.MarkedEvent{
		LogID:     entry.ID,
		UserID:    u.ID,
		Username:  u.Username,
		Date:      today.Format(clock.DateLayout),
		Time:      at,
		CheckedIn: now,
	})

	return SubmitResponse{Message: "Attendance marked successfully", Username: u.Username, Time: at}, nil
}

// publish emits the event; failures are logged and never surface.
func (s *Service) publish(ctx context.Context, evt queue.MarkedEvent) {
	if s.publisher == nil {
		return
	}
	l := logging.FromContext(ctx)
	msg, err := queue.NewMarkedMessage(evt)
	if err == nil {
		err = s.publisher.Publish(ctx, msg)
	}
	if err != nil {
		l.Warn("failed to publish attendance event", zap.String("log_id", evt.LogID), zap.Error(err))
	}
}

// TodayRoster lists every employee with PRESENT or ABSENT for today.
func (s *Service) TodayRoster(ctx context.Context) ([]RosterEntry, error) {
	today := clock.Today(s.clock)

	employees, err := s.users.FindByRole(ctx, user.RoleEmployee)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByDate(ctx, today)
	if err != nil {
		return nil, err
	}
	present := make(map[string]Log, len(logs))
	for _, l := range logs {
		present[l.UserID] = l
	}

	date := today.Format(clock.DateLayout)
	roster := make([]RosterEntry, 0, len(employees))
	for _, e := range employees {
		entry := RosterEntry{
			UserID:   e.ID,
			Username: e.Username,
			Role:     string(e.Role),
			Status:   StatusAbsent,
			Date:     date,
		}
		if l, ok := present[e.ID]; ok {
			at := s.timeOfDay(l.CheckedInAt)
			entry.Status = StatusPresent
			entry.CheckInTime = &at
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// LogsByUser returns every log of the user with the given id.
func (s *Service) LogsByUser(ctx context.Context, userID string) ([]LogResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	logs, err := s.logs.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	res := make([]LogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, LogResponse{
			ID:     l.ID,
			UserID: l.UserID,
			Date:   l.Date.Format(clock.DateLayout),
			Time:   s.timeOfDay(l.CheckedInAt),
		})
	}
	return res, nil
}

// timeOfDay renders t in the clock's zone, which may differ from the zone the
// driver returned it in.
func (s *Service) timeOfDay(t time.Time) string {
	return t.In(s.clock.Now().Location()).Format(clock.TimeLayout)
}

func isRejection(err error) bool {
	switch err {
	case ErrNoSession, ErrInvalidToken, ErrAlreadyMarked, user.ErrUserNotFound:
		return true
	}
	return false
}
