package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"qrattendance/internal/attendance"
	"qrattendance/internal/clock"
	"qrattendance/internal/config"
	"qrattendance/internal/credential"
	"qrattendance/internal/httpmiddleware"
	"qrattendance/internal/logging"
	"qrattendance/internal/metrics"
	"qrattendance/internal/queue"
	"qrattendance/internal/session"
	"qrattendance/internal/store"
	"qrattendance/internal/user"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx := context.Background()

	clk, err := clock.NewSystem(cfg.TimeZone)
	if err != nil {
		return err
	}

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		mem := queue.NewInMemory(64)
		drainCtx, stopDrain := context.WithCancel(ctx)
		defer stopDrain()
		if err := drainInProcess(drainCtx, logger, mem); err != nil {
			return err
		}
		q = mem
	} else {
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}

	users := user.NewRepository(db.Client)
	sessions := session.NewRepository(db.Client)
	logs := attendance.NewRepository(db.Client)

	userSvc := user.NewService(users, cfg.LegacyPlaintextLogin)
	if cfg.MigratePasswordsOnStart {
		n, err := userSvc.MigratePasswords(ctx)
		var partial *credential.PartialError
		switch {
		case errors.As(err, &partial):
			logger.Warn("password migration skipped accounts", zap.Int("migrated", n), zap.Int("skipped", len(partial.Failed)), zap.Error(err))
		case err != nil:
			return err
		default:
			logger.Info("password migration finished", zap.Int("migrated", n))
		}
	}

	limiter := httpmiddleware.NewIPRateLimiter(cfg.RateLimitPerMin)
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	limiter.StartSweeper(sweepCtx, time.Minute, 10*time.Minute)

	r := newRouter(cfg, logger, routerDeps{
		limiter:    limiter,
		db:         db,
		redis:      redisClient,
		users:      user.NewHandler(userSvc),
		sessions:   session.NewHandler(session.NewService(sessions, clk)),
		attendance: attendance.NewHandler(attendance.NewService(logs, sessions, users, q, clk)),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("timezone", cfg.TimeZone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}

// drainInProcess consumes the in-memory queue in this process. A separate
// worker cannot see it.
func drainInProcess(ctx context.Context, logger *zap.Logger, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			logger.Debug("event", zap.String("type", msg.Type), zap.ByteString("body", msg.Body))
			metrics.EventsProcessed.WithLabelValues(msg.Type).Inc()
		}
	}()
	return nil
}

type healthChecker interface {
	Healthy(ctx context.Context) bool
}

type routerDeps struct {
	db         healthChecker
	redis      healthChecker
	users      *user.Handler
	sessions   *session.Handler
	attendance *attendance.Handler
	limiter    *httpmiddleware.IPRateLimiter
}

func newRouter(cfg config.App, logger *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logger, "/healthz", "/metrics"))
	r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := deps.db != nil && deps.db.Healthy(c.Request.Context())
		redisHealthy := deps.redis != nil && deps.redis.Healthy(c.Request.Context())
		status, text := http.StatusOK, "ok"
		if !dbHealthy || !redisHealthy {
			status, text = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(status, gin.H{"status": text, "db": dbHealthy, "redis": redisHealthy})
	})

	api := r.Group("/api")
	if deps.limiter == nil {
		deps.limiter = httpmiddleware.NewIPRateLimiter(cfg.RateLimitPerMin)
	}
	api.Use(deps.limiter.GinMiddleware())
	if deps.users != nil {
		user.RegisterRoutes(api, deps.users)
	}
	if deps.sessions != nil {
		session.RegisterRoutes(api, deps.sessions)
	}
	if deps.attendance != nil {
		attendance.RegisterRoutes(api, deps.attendance)
	}
	return r
}
