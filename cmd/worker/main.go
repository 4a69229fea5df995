package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/riyajha981219/squareboat-job-portal/internal/config"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
	"github.com/riyajha981219/squareboat-job-portal/internal/mailer"
	"github.com/riyajha981219/squareboat-job-portal/internal/metrics"
	"github.com/riyajha981219/squareboat-job-portal/internal/tasks"
	"github.com/riyajha981219/squareboat-job-portal/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Println("database connection ready for worker")

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr()},
		asynq.Config{Concurrency: 10},
	)

	mailHandler := worker.NewMailTaskHandler(db, smtpMailer, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeApplicationSubmitted, mailHandler)

	logger.Info("worker service started", slog.String("redis_addr", cfg.Redis.Addr()))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
