package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tasknest/tasknest-backend/internal/api"
	"github.com/tasknest/tasknest-backend/internal/auth"
	"github.com/tasknest/tasknest-backend/internal/config"
	"github.com/tasknest/tasknest-backend/internal/db"
	"github.com/tasknest/tasknest-backend/internal/logger"
	"github.com/tasknest/tasknest-backend/internal/metrics"
	"github.com/tasknest/tasknest-backend/internal/repository/postgres"
	"github.com/tasknest/tasknest-backend/internal/services"
	"github.com/tasknest/tasknest-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLHrs)*time.Hour)
	userSvc := services.NewUserService(repos.Users, repos.Sessions, tm)
	taskSvc := services.NewTaskService(repos.Tasks, repos.ActivityLogs, wp)

	r := api.NewRouter(cfg, userSvc, taskSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
