package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/internal/timetable"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

// @title Lecture Timetable API
// @version 1.0.0
// @description Weekly lecture timetable with one-off reschedules and conflict detection
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db.DB, logr)
		if err != nil {
			return err
		}
		if err := migrator.Up(ctx); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled && cacheRepo.Enabled())

	lectureRepo := repository.NewLectureRepository(db)
	rescheduleRepo := repository.NewRescheduleRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	window, err := timetable.NewWindow(cfg.Timetable.WindowStart, cfg.Timetable.WindowEnd)
	if err != nil {
		return err
	}
	timetableSvc := service.NewTimetableService(lectureRepo, rescheduleRepo, directoryRepo, cacheSvc, metrics, service.TimetableServiceConfig{
		Window:      window,
		Location:    cfg.Timetable.Location,
		SnapshotTTL: cfg.Timetable.SnapshotTTL,
		CacheTTL:    cfg.Timetable.CacheTTL,
	}, logr)

	refresher := service.NewSnapshotRefresher(timetableSvc, jobs.QueueConfig{
		Workers:    cfg.Refresh.Workers,
		MaxRetries: cfg.Refresh.Retries,
		RetryDelay: cfg.Refresh.RetryDelay,
	}, logr)
	refresher.Start(ctx)
	defer refresher.Stop()

	if _, err := timetableSvc.Refresh(ctx); err != nil {
		logr.Warn("initial timetable snapshot failed, retrying on first read", zap.Error(err))
	}

	lectureSvc := service.NewLectureService(lectureRepo, timetableSvc, refresher, metrics, nil, logr)
	rescheduleSvc := service.NewRescheduleService(rescheduleRepo, lectureRepo, timetableSvc, refresher, metrics, cfg.Timetable.CheckOverrides, nil, logr)
	exportSvc := service.NewExportService(timetableSvc, logr)

	router := newRouter(routerDeps{
		cfg:      cfg,
		logger:   logr,
		tokens:   service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
		observer: metrics,
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": directoryRepo,
			"cache":    cacheRepo,
			"snapshot": timetableSvc,
		}),
		timetable:   handler.NewTimetableHandler(timetableSvc, exportSvc),
		lectures:    handler.NewLectureHandler(lectureSvc),
		reschedules: handler.NewRescheduleHandler(rescheduleSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
