package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/database"
	"github.com/stemsi/schoolhub-backend/internal/handler"
	"github.com/stemsi/schoolhub-backend/internal/logger"
	"github.com/stemsi/schoolhub-backend/internal/middleware"
	"github.com/stemsi/schoolhub-backend/internal/repository"
	"github.com/stemsi/schoolhub-backend/internal/router"
	"github.com/stemsi/schoolhub-backend/internal/service"
	"github.com/stemsi/schoolhub-backend/internal/validator"
	"github.com/stemsi/schoolhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Starting SchoolHub Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	timetableRepo := repository.NewTimetableRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	var sessionStore repository.SessionBackend = repository.NewSessionRepository(pool)
	if cfg.SessionCacheEnabled {
		sessionStore = repository.NewCachedSessionStore(sessionStore, rdb, log)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	clock := service.SystemClock{}
	sessionService := service.NewSessionService(sessionStore, userRepo, clock, cfg.SessionTTL, log)
	emailTokenService := service.NewEmailTokenService(cfg.EmailTokenSecret, cfg.EmailTokenExpiry, clock)
	authService := service.NewAuthService(userRepo, sessionService, emailTokenService, cfg.BcryptCost, log)
	announcementBus := service.NewAnnouncementBus(rdb, log)

	gradeService := service.NewGradeService(gradeRepo, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, log)
	announcementService := service.NewAnnouncementService(announcementRepo, announcementBus, log)
	groupService := service.NewGroupService(groupRepo, log)
	subjectService := service.NewSubjectService(subjectRepo, log)
	timetableService := service.NewTimetableService(timetableRepo, clock, log)
	messageService := service.NewMessageService(messageRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	cookies := middleware.CookieSettings{Secure: cfg.SessionCookieSecure}
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, sessionService, cookies, log),
		Grade:        handler.NewGradeHandler(gradeService, log),
		Attendance:   handler.NewAttendanceHandler(attendanceService, log),
		Announcement: handler.NewAnnouncementHandler(announcementService, announcementBus, sessionService, cfg.AllowedOrigins, log),
		Group:        handler.NewGroupHandler(groupService, log),
		Subject:      handler.NewSubjectHandler(subjectService, log),
		Timetable:    handler.NewTimetableHandler(timetableService, log),
		Message:      handler.NewMessageHandler(messageService, log),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sweeper := worker.NewSessionSweeper(sessionStore, rdb, cfg.SessionSweepInterval, log)
	sweeperDone := make(chan struct{})
	go func() {
		sweeper.Start(workerCtx)
		close(sweeperDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	loginLimiter := middleware.NewRateLimiter(rdb, cfg.LoginRateLimit, time.Minute, config.CacheKey.LoginAttemptsKey, log)
	r := router.SetupRouter(sessionService, loginLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()
	<-sweeperDone

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
