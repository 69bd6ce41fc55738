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

	"qrattendance/internal/config"
	"qrattendance/internal/credential"
	"qrattendance/internal/logging"
	"qrattendance/internal/metrics"
	"qrattendance/internal/queue"
	"qrattendance/internal/store"
	"qrattendance/internal/user"
)

// Worker consumes attendance events and optionally migrates legacy passwords
// before it starts listening.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	if cfg.MigratePasswordsOnStart {
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect failed", zap.Error(err))
		}
		n, err := user.NewService(user.NewRepository(db.Client), cfg.LegacyPlaintextLogin).MigratePasswords(ctx)
		_ = db.Close()
		var partial *credential.PartialError
		switch {
		case errors.As(err, &partial):
			logger.Warn("password migration skipped accounts", zap.Int("migrated", n), zap.Int("skipped", len(partial.Failed)), zap.Error(err))
		case err != nil:
			logger.Fatal("password migration failed", zap.Error(err))
		default:
			logger.Info("password migration finished", zap.Int("migrated", n))
		}
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		logger.Warn("in-memory queue selected; the worker only sees events published in this process")
		q = queue.NewInMemory(64)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		if !redisClient.Healthy(ctx) {
			logger.Warn("redis not reachable, will keep retrying", zap.String("addr", cfg.RedisAddr))
		}
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metricsSrv := &http.Server{
		Addr:         ":" + cfg.WorkerMetricsPort,
		Handler:      newMetricsRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("serving worker metrics", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	messages, err := q.Consume(ctx)
	if err != nil {
		logger.Fatal("queue consume init failed", zap.Error(err))
	}

	logger.Info("worker started, waiting for messages")
	for msg := range messages {
		handle(logger, msg)
	}
	logger.Info("worker stopped")
}

// newMetricsRouter exposes the worker's Prometheus counters.
func newMetricsRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return r
}

func handle(logger *zap.Logger, msg queue.Message) {
	switch msg.Type {
	case queue.TypeAttendanceMarked:
		evt, err := queue.DecodeMarked(msg)
		if err != nil {
			logger.Warn("dropping malformed event", zap.String("type", msg.Type), zap.Error(err))
			metrics.EventsProcessed.WithLabelValues("malformed").Inc()
			return
		}
		logger.Info("attendance marked",
			zap.String("log_id", evt.LogID),
			zap.String("user_id", evt.UserID),
			zap.String("username", evt.Username),
			zap.String("date", evt.Date),
			zap.String("time", evt.Time),
		)
		metrics.EventsProcessed.WithLabelValues(msg.Type).Inc()
	default:
		logger.Debug("ignoring event", zap.String("type", msg.Type))
		metrics.EventsProcessed.WithLabelValues("unknown").Inc()
	}
}
