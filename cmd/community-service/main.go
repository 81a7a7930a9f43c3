package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-community-service/internal/auth"
	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/metrics"
	"github.com/pribylovaa/go-community-service/internal/notify"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/internal/service"
	"github.com/pribylovaa/go-community-service/internal/storage"
	csminio "github.com/pribylovaa/go-community-service/internal/storage/minio"
	csmongo "github.com/pribylovaa/go-community-service/internal/storage/mongo"
	csredis "github.com/pribylovaa/go-community-service/internal/storage/redis"
	cshttp "github.com/pribylovaa/go-community-service/internal/transport/http"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting community-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	mongoStore, err := csmongo.New(dbCtx, cfg)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("mongo_connected")

	presence, err := csredis.New(cfg.Cache.URL, cfg.Cache.Prefix)
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		_ = mongoStore.Close(context.Background())
		os.Exit(1)
	}
	log.Info("redis_connected")

	// Вложения опциональны: без настроенного S3 сервис работает,
	// presign-ручка отвечает 503.
	var attachments storage.Attachments
	if cfg.S3.Endpoint != "" {
		att, err := csminio.New(cfg)
		if err != nil {
			log.Error("s3_connect_failed", slog.String("err", err.Error()))
			rootCancel()
			_ = presence.Close()
			_ = mongoStore.Close(context.Background())
			os.Exit(1)
		}
		attachments = att
		log.Info("s3_connected")
	}

	// Пуш-уведомления тоже опциональны.
	var notifier notify.Notifier = notify.Nop{}
	var natsNotifier *notify.NatsNotifier
	if cfg.Nats.URL != "" {
		natsNotifier, err = notify.NewNats(cfg.Nats.URL, cfg.Nats.Subject)
		if err != nil {
			log.Error("nats_connect_failed", slog.String("err", err.Error()))
			rootCancel()
			_ = presence.Close()
			_ = mongoStore.Close(context.Background())
			os.Exit(1)
		}
		notifier = natsNotifier
		log.Info("nats_connected")
	}

	hub := realtime.NewHub()
	bridge := realtime.NewBridge(hub, presence.Client(), cfg.Cache.Prefix+":events", log)
	metrics.RegisterSubscribersGauge(hub.Subscribers)

	svc := service.New(mongoStore, presence, attachments, bridge, notifier, *cfg)
	log.Info("service_initialized")

	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	// Ops-эндпойнты: readiness/liveness/metrics на отдельном порту.
	var ready int32 // 0 — not ready; 1 — ready
	opsAddr := cfg.Ops.Addr()

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	mux.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:              opsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("ops_listen_start", "addr", opsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops_serve_failed", slog.String("err", err.Error()))
		}
	}()

	// Публичный HTTP API.
	router := cshttp.NewRouter(svc, verifier, cfg, cshttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
	})

	apiAddr := cfg.HTTP.Addr()
	apiSrv := &http.Server{
		Addr:              apiAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", apiAddr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = apiSrv.Close()
	}
	shutdownCancel()

	_ = opsSrv.Shutdown(context.Background())

	svc.Close()
	bridge.Close()
	hub.Close()
	if natsNotifier != nil {
		_ = natsNotifier.Close()
	}
	_ = presence.Close()

	rootCancel()
	_ = mongoStore.Close(context.Background())

	log.Info("service_stopped")
	os.Exit(0)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
