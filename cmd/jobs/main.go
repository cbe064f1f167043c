// Command jobs runs the maintenance jobs once and exits, for use from an
// external scheduler when the server's own cron is not wanted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/database"
	"github.com/qs3c/hatch_server/internal/pkg/cron"
	"github.com/qs3c/hatch_server/internal/pkg/email"
	"github.com/qs3c/hatch_server/internal/pkg/logger"
	"github.com/qs3c/hatch_server/internal/pkg/storage"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/service"
)

var (
	reconcile      = flag.Bool("reconcile", true, "Downgrade expired subscriptions")
	autoAttendance = flag.Bool("auto-attendance", true, "Mark registrations for finished events as attended")
	purgePayments  = flag.Bool("purge-payments", false, "Delete reviewed payments past the retention window")
	retentionDays  = flag.Int("retention-days", 0, "Override the configured payment retention")
)

func main() {
	flag.Parse()
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

	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	tx := repository.NewTransactor(db)
	subscriptionService := service.NewSubscriptionService(userRepo, tx, zlog)

	var jobs []cron.Job
	if *reconcile {
		jobs = append(jobs, cron.Job{Name: "reconcile-subscriptions", Run: func(ctx context.Context) error {
			result, err := subscriptionService.ReconcileExpired(ctx)
			if result != nil {
				zlog.Info("reconcile", zap.Int("scanned", result.Scanned), zap.Int("downgraded", result.Downgraded), zap.Int("failed", result.Failed))
			}
			return err
		}})
	}
	if *autoAttendance {
		attendanceService := service.NewAttendanceService(
			repository.NewEventRepository(db),
			repository.NewRegistrationRepository(db),
			repository.NewPastEventRepository(db),
			userRepo, tx, zlog,
		)
		jobs = append(jobs, cron.Job{Name: "auto-attendance", Run: func(ctx context.Context) error {
			result, err := attendanceService.AutoMarkAttendance(ctx)
			if result != nil {
				zlog.Info("auto-attendance", zap.Int("events", result.Events), zap.Int64("marked", result.Marked))
			}
			return err
		}})
	}
	if *purgePayments {
		store, err := storage.New(&cfg.Storage)
		if err != nil {
			zlog.Fatal("init storage", zap.Error(err))
		}
		paymentService := service.NewPaymentService(
			repository.NewPaymentRepository(db), userRepo, tx, subscriptionService,
			store, email.NewService(&cfg.Email, zlog), cfg, zlog,
		)
		retention := time.Duration(*retentionDays) * 24 * time.Hour
		jobs = append(jobs, cron.Job{Name: "purge-payments", Run: func(ctx context.Context) error {
			n, err := paymentService.PurgeReviewed(ctx, retention)
			zlog.Info("purge-payments", zap.Int64("deleted", n))
			return err
		}})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := cron.NewService(zlog, jobs...)
	failed := false
	for _, job := range jobs {
		if err := runner.RunNow(ctx, job.Name); err != nil {
			zlog.Error("job failed", zap.String("job", job.Name), zap.Error(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
