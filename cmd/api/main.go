package main

import (
	"log"
	"net/http"
	"time"

	"pillminder/internal/adapters/auth/authsvc"
	"pillminder/internal/alerts"
	"pillminder/internal/config"
	"pillminder/internal/platform/logger"
	"pillminder/internal/ports/auth"
	"pillminder/internal/router"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// @title pillminder API
// @version 1.0
// @description Backend de recordatorio de medicación para elders y caregivers.
func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "pillminder")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Verifier: solo si el auth service está configurado; si no, modo dev.
	var verifier auth.AuthVerifier
	if cfg.AuthBaseURL != "" {
		client := authsvc.NewClient(authsvc.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
		})
		verifier = authsvc.NewVerifier(client)
	} else {
		zlog.Warn("auth service not configured, running in dev mode (X-Debug-User-ID)")
	}

	loc := cfg.Location()

	handler, svcs := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Logger:       zlog,
		Location:     loc,
	})

	// Dispatcher de alertas: throttle redis si hay, noop si no.
	var throttle alerts.Throttle = alerts.NoopThrottle{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		throttle = alerts.NewRedisThrottle(rdb, cfg.AlertThrottleTTL)
	}

	dispatcher := alerts.NewDispatcher(
		svcs.SchedulesRepo,
		svcs.Medications,
		alerts.NewLogNotifier(zlog),
		throttle,
		zlog,
		loc,
	)
	sched, err := dispatcher.Start(cfg.AlertScanInterval)
	if err != nil {
		zlog.Fatal("alert dispatcher", zap.Error(err))
	}
	defer func() { _ = sched.Shutdown() }()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	zlog.Info("starting server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server error", zap.Error(err))
	}
}
