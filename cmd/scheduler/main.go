package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/repository"
	"github.com/segyhp/installment-engine/internal/service"
	"github.com/segyhp/installment-engine/pkg/calendar"
	"github.com/segyhp/installment-engine/pkg/logger"
)

const exportTimeout = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("Starting quinzena scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	reportService := service.NewReportService(repository.NewInstallmentRepository(db), log)

	// Initialize cron scheduler
	loc := cfg.GetLocation()
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))

	// Schedule tasks
	if err := setupCronJobs(c, cfg, reportService, loc, log); err != nil {
		log.Error("Failed to schedule jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	log.Info("Scheduler started", slog.String("spec", cfg.Scheduler.QuinzenaSpec), slog.String("timezone", loc.String()))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, reports *service.ReportService, loc *time.Location, log *slog.Logger) error {
	// On every report day export the workbook of the quinzena closing today.
	_, err := c.AddFunc(cfg.Scheduler.QuinzenaSpec, func() {
		period := calendar.NextPeriodDate(time.Now().In(loc))
		log.Info("Running quinzena export job", slog.String("period", period.String()))
		exportQuinzena(reports, period, cfg.Scheduler.ExportDir, log)
	})
	return err
}

func exportQuinzena(reports *service.ReportService, period calendar.PeriodDate, dir string, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	if _, err := reports.ExportPeriodToDir(ctx, period, dir); err != nil {
		log.Error("Quinzena export failed", slog.String("period", period.String()), slog.String("error", err.Error()))
	}
}
