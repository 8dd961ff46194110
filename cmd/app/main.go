package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gymops/internal/config"
	"gymops/internal/db"
	"gymops/internal/email"
	"gymops/internal/logger"
	"gymops/internal/scheduler"
	"gymops/internal/server"
)

const shutdownTimeout = 15 * time.Second

// @title GymOps API
// @version 1.0
// @description Gym operations backend: subscriptions, bookings and workout tracking.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.Configure(cfg.LogLevel)
	logger.Info("starting gymops", "port", cfg.Port, "timezone", cfg.Timezone)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}
	logger.Info("migrations applied", "path", cfg.MigrationsPath)

	mail := email.New(email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	}, cfg.RedisAddr)
	defer mail.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mail.Ping(ctx); err != nil {
		logger.WithError(err).Warn("redis unreachable, emails will fail until it recovers", "addr", cfg.RedisAddr)
	}

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		mail.Start(ctx)
	}()

	srv, services := server.Build(database, cfg, mail)

	jobs := scheduler.New(time.Minute)
	if err := scheduler.Register(jobs, scheduler.Schedules{
		Reaper: cfg.ReaperSchedule,
		Gauge:  cfg.GaugeSchedule,
	}, scheduler.Jobs{
		Tokens:        services.Users,
		Subscriptions: services.Subscriptions,
		Mail:          mail,
	}); err != nil {
		logger.Fatal("failed to schedule jobs", "error", err)
	}
	jobs.Start()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("http server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("http server shutdown")
	}
	jobs.Stop(shutdownCtx)

	cancel()
	workers.Wait()

	logger.Info("gymops stopped")
}
