package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"vcc-feedback/internal/app"
	"vcc-feedback/internal/feedback"
	"vcc-feedback/internal/form"
	handlersFeedback "vcc-feedback/internal/handlers/feedback"
	"vcc-feedback/internal/kafka"
	"vcc-feedback/internal/middleware"
	"vcc-feedback/internal/render"
	"vcc-feedback/internal/session"
	"vcc-feedback/internal/slot"
)

const (
	cfgPath = "config/config.yaml"

	visitorsCleanupInterval = time.Minute
	visitorsIdleTimeout     = 3 * time.Minute
	shutdownTimeout         = 30 * time.Second
)

func main() {
	// init logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	logger := zapLogger.Sugar()
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			logger.Warnf("error to sync logger: %v", err)
		}
	}()

	if err := app.LoadDotEnv(); err != nil {
		logger.Infof("no .env file loaded: %v", err)
	}

	// парсим конфиг
	c, err := app.NewConfig(cfgPath)
	if err != nil {
		logger.Fatalf("error to parsing config: %v", err)
	}

	loc, err := c.Location()
	if err != nil {
		logger.Fatalf("error to load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// init redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.CfgRedis.Addr,
		Password: c.CfgRedis.Password,
		DB:       c.CfgRedis.DB,
	})
	defer redisClient.Close() // nolint:errcheck

	// init storage
	slots, closeSlots, err := newSlotStorage(ctx, c, redisClient, logger)
	if err != nil {
		logger.Fatalf("error to init %s storage: %v", c.Storage, err)
	}
	defer closeSlots()

	if err := slots.Ping(ctx); err != nil {
		logger.Warnf("Failed to get response to ping: %v", err)
	}

	// init events
	var events kafka.EventProducer
	if c.KafkaEnabled() {
		producer := kafka.NewProducer(c.CfgKafka.Brokers, c.CfgKafka.Topic, logger)
		defer producer.Close() // nolint:errcheck
		events = producer
	}

	// init repository
	store := feedback.NewSlotRecordStore(slots, logger)
	sessionRepository := session.NewSessionRepository(redisClient, logger, c.Secret, c.SessionDuration)

	// init handlers
	formService := form.NewService(logger, store, events)
	feedbackHandlers := handlersFeedback.NewFeedbackHandler(
		logger, store, sessionRepository, formService, render.NewPages(), slots, loc, c.ListLimit,
	)

	limiter := middleware.NewRateLimiter(c.SubmitRPS, c.SubmitBurst, logger)
	go limiter.Cleanup(ctx, visitorsCleanupInterval, visitorsIdleTimeout)

	r := newRouter(feedbackHandlers, limiter)

	logger.Infow("starting server",
		"type", "START",
		"addr", c.ServerPort,
		"storage", c.Storage,
		"events", c.KafkaEnabled(),
		"trustProxy", c.TrustProxy,
	)

	srv := &http.Server{
		Addr:         c.ServerPort,
		Handler:      serverHandler(r, logger, c.TrustProxy),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("can't start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
}

func newRouter(h *handlersFeedback.FeedbackHandler, limiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/feedback", h.FormPage).Methods(http.MethodGet)
	r.Handle("/feedback", limiter.Middleware(http.HandlerFunc(h.Submit))).Methods(http.MethodPost)
	r.HandleFunc("/view", h.View).Methods(http.MethodGet)

	r.HandleFunc("/api/feedback", h.APIList).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// newSlotStorage - выбирает бэкенд слотов по конфигу. Второе значение закрывает ресурсы бэкенда.
func newSlotStorage(
	ctx context.Context,
	c *app.Config,
	redisClient *redis.Client,
	logger *zap.SugaredLogger,
) (slot.Storage, func(), error) {
	switch c.Storage {
	case app.StoragePostgres:
		db, err := sql.Open("postgres", c.DSN())
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(c.MaxOpenConns)

		storage := slot.NewPostgresStorage(db, logger)
		if err := storage.EnsureSchema(ctx); err != nil {
			db.Close() // nolint:errcheck
			return nil, nil, err
		}

		return storage, func() { db.Close() }, nil // nolint:errcheck
	case app.StorageMemory:
		logger.Warn("memory storage selected, feedback is lost on restart")
		return slot.NewMemoryStorage(), func() {}, nil
	default:
		return slot.NewRedisStorage(redisClient, logger), func() {}, nil
	}
}

// recoveryLogger - gorilla/handlers пишет панику через Println
type recoveryLogger struct {
	logger *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(v...)
}

// serverHandler - X-Forwarded-For учитывается только при trustProxy,
// иначе клиент сам выбирает себе IP для лимитера
func serverHandler(r http.Handler, logger *zap.SugaredLogger, trustProxy bool) http.Handler {
	if trustProxy {
		r = gorillaHandlers.ProxyHeaders(r)
	}
	return withRecovery(r, logger)
}

func withRecovery(next http.Handler, logger *zap.SugaredLogger) http.Handler {
	return gorillaHandlers.RecoveryHandler(
		gorillaHandlers.RecoveryLogger(recoveryLogger{logger: logger}),
		gorillaHandlers.PrintRecoveryStack(true),
	)(next)
}
