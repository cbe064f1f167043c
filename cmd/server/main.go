package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/api"
	"github.com/qs3c/hatch_server/internal/api/handler"
	"github.com/qs3c/hatch_server/internal/database"
	"github.com/qs3c/hatch_server/internal/pkg/cache"
	"github.com/qs3c/hatch_server/internal/pkg/cron"
	"github.com/qs3c/hatch_server/internal/pkg/email"
	"github.com/qs3c/hatch_server/internal/pkg/logger"
	"github.com/qs3c/hatch_server/internal/pkg/storage"
	"github.com/qs3c/hatch_server/internal/pkg/validate"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	if err := validate.Register(); err != nil {
		zlog.Fatal("register validators", zap.Error(err))
	}

	// database
	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("migrate database", zap.Error(err))
	}
	zlog.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// redis is optional; without it the event list is read straight from the database
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Warn("redis unavailable, event cache disabled", zap.Error(err))
	}
	eventCache := cache.New(rdb, time.Duration(cfg.Redis.EventCacheTTLSeconds)*time.Second)

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		zlog.Fatal("init storage", zap.Error(err))
	}
	mailer := email.NewService(&cfg.Email, zlog)

	// repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	pastRepo := repository.NewPastEventRepository(db)
	tx := repository.NewTransactor(db)

	// services
	subscriptionService := service.NewSubscriptionService(userRepo, tx, zlog)
	authService := service.NewAuthService(userRepo, mailer, cfg, zlog)
	userService := service.NewUserService(userRepo)
	eventService := service.NewEventService(eventRepo, userRepo, tx, eventCache, zlog)
	attendanceService := service.NewAttendanceService(eventRepo, regRepo, pastRepo, userRepo, tx, zlog)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, tx, subscriptionService, store, mailer, cfg, zlog)
	adminService := service.NewAdminService(userRepo, paymentRepo, eventRepo, subscriptionService, zlog)

	if err := adminService.PromoteSeedAdmins(cfg.Admin.SeedEmails); err != nil {
		zlog.Error("promote seed admins", zap.Error(err))
	}

	// background jobs
	retention := time.Duration(cfg.Subscription.PaymentRetentionDays) * 24 * time.Hour
	scheduler := cron.NewService(zlog,
		cron.Job{
			Name:     "reconcile-subscriptions",
			Interval: time.Duration(cfg.Subscription.ReconcileIntervalSeconds) * time.Second,
			Run: func(ctx context.Context) error {
				_, err := subscriptionService.ReconcileExpired(ctx)
				return err
			},
		},
		cron.Job{
			Name:     "auto-attendance",
			Interval: time.Duration(cfg.Subscription.AttendanceIntervalSecs) * time.Second,
			Run: func(ctx context.Context) error {
				_, err := attendanceService.AutoMarkAttendance(ctx)
				return err
			},
		},
		cron.Job{
			Name:     "purge-payments",
			Interval: 24 * time.Hour,
			Run: func(ctx context.Context) error {
				_, err := paymentService.PurgeReviewed(ctx, retention)
				return err
			},
		},
	)
	// catch up on anything that lapsed while the server was down
	if err := scheduler.RunNow(context.Background(), "reconcile-subscriptions"); err != nil {
		zlog.Error("startup reconcile", zap.Error(err))
	}
	scheduler.Start()

	// handlers
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService, subscriptionService, attendanceService),
		handler.NewTierHandler(),
		handler.NewEventHandler(eventService),
		handler.NewAttendanceHandler(attendanceService),
		handler.NewPaymentHandler(paymentService),
		handler.NewAdminHandler(adminService, subscriptionService, attendanceService),
		userRepo,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zlog.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
	scheduler.Stop()
	if rdb != nil {
		rdb.Close()
	}
	zlog.Info("server stopped")
}
