package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"qrattendance/internal/clock"
	"qrattendance/internal/logging"
	"qrattendance/internal/metrics"
)

// CreateResult is today's session and whether this call created it.
type CreateResult struct {
	Session Session
	Created bool
}

type Service interface {
	Create(ctx context.Context) (CreateResult, error)
	GetToday(ctx context.Context) (Session, error)
	DeleteToday(ctx context.Context) error
	TodayQRCode(ctx context.Context, size int) ([]byte, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
	sf    *singleflight.Group
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clock: clk, sf: &singleflight.Group{}}
}

// Create returns today's session, creating it with a fresh random token when
// none exists. Concurrent callers all receive the same session; only the one
// that inserted it sees Created.
func (s *service) Create(ctx context.Context) (CreateResult, error) {
	today := clock.Today(s.clock)

	led := false
	v, err, _ := s.sf.Do(today.Format(clock.DateLayout), func() (any, error) {
		led = true
		// Followers share this call, so the leader's cancellation must not end it.
		return s.create(context.WithoutCancel(ctx), today)
	})
	if err != nil {
		return CreateResult{}, err
	}
	res := v.(CreateResult)
	res.Created = res.Created && led
	return res, nil
}

func (s *service) create(ctx context.Context, today time.Time) (CreateResult, error) {
	existing, err := s.repo.FindByDate(ctx, today)
	if err != nil {
		return CreateResult{}, err
	}
	if existing != nil {
		return CreateResult{Session: *existing}, nil
	}

	sess := Session{ID: uuid.NewString(), Token: uuid.NewString(), Date: today}
	inserted, err := s.repo.CreateIfAbsent(ctx, &sess)
	if err != nil {
		return CreateResult{}, err
	}
	if !inserted {
		winner, err := s.repo.FindByDate(ctx, today)
		if err != nil {
			return CreateResult{}, err
		}
		if winner == nil {
			return CreateResult{}, fmt.Errorf("session for %s was removed during creation", today.Format(clock.DateLayout))
		}
		return CreateResult{Session: *winner}, nil
	}

	metrics.SessionsCreated.Inc()
	logging.FromContext(ctx).Info("attendance session created",
		zap.String("session_id", sess.ID),
		zap.String("date", today.Format(clock.DateLayout)),
	)
	return CreateResult{Session: sess, Created: true}, nil
}

func (s *service) GetToday(ctx context.Context) (Session, error) {
	sess, err := s.repo.FindByDate(ctx, clock.Today(s.clock))
	if err != nil {
		return Session{}, err
	}
	if sess == nil {
		return Session{}, ErrNoSessionToday
	}
	return *sess, nil
}

func (s *service) DeleteToday(ctx context.Context) error {
	sess, err := s.repo.FindByDate(ctx, clock.Today(s.clock))
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSessionToDelete
	}
	if err := s.repo.Delete(ctx, sess.ID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("attendance session deleted", zap.String("session_id", sess.ID))
	return nil
}

// TodayQRCode renders today's token as a square PNG of size pixels.
func (s *service) TodayQRCode(ctx context.Context, size int) ([]byte, error) {
	sess, err := s.GetToday(ctx)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(sess.Token, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
