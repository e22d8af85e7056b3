package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"foliohost/internal/app"
	"foliohost/internal/config"
	"foliohost/internal/events"
	"foliohost/internal/hosting"
	"foliohost/internal/publock"
	"foliohost/internal/server"
	"foliohost/internal/storage"
	"foliohost/internal/store"
	"foliohost/internal/usertoken"
	"foliohost/internal/util"
)

func main() {
	cfg, err := config.Load(os.Getenv("FOLIOHOST_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var siteStore store.Store
	if cfg.DatabaseDSN != "" {
		gormStore, err := store.NewGormStore(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("failed to init database: %v", err)
		}
		siteStore = gormStore
	} else {
		slog.Warn("no databaseDSN configured, using in-memory store")
		siteStore = store.NewMemoryStore()
	}

	local, err := storage.NewLocalStore(cfg.StaticRoot)
	if err != nil {
		log.Fatalf("failed to init static root: %v", err)
	}

	var mirror storage.Mirror
	if cfg.MinioEndpoint != "" {
		mirror, err = storage.NewMinioMirror(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init mirror: %v", err)
		}
	}

	var hostingClient app.HostingClient
	if cfg.HostingBaseURL != "" {
		hostingClient = hosting.NewClient(cfg.HostingBaseURL, cfg.HostingToken)
	}

	locker, err := publock.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, "", publock.DefaultTTL)
	if err != nil {
		log.Fatalf("failed to init publish locker: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(events.AMQPConfig{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange})
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	visitors := app.NewRedisVisitors(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}), "")

	var trustedProxies *util.TrustedProxies
	if len(cfg.TrustedProxyCIDRs) > 0 {
		trustedProxies, err = util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
		if err != nil {
			log.Fatalf("failed to parse trusted proxies: %v", err)
		}
	}

	appCore := app.New(app.Options{
		Store:      siteStore,
		Local:      local,
		Mirror:     mirror,
		Hosting:    hostingClient,
		Locker:     locker,
		Events:     publisher,
		Visitors:   visitors,
		BaseDomain: cfg.BaseDomain,
	})

	httpServer, err := server.New(server.Config{
		App:                         appCore,
		TokenVerifier:               mustVerifier(cfg),
		RedisAddr:                   cfg.RedisAddr,
		RedisPassword:               cfg.RedisPassword,
		AnalyticsRateLimitPerMinute: cfg.AnalyticsRateLimitPerMinute,
		TrustedProxies:              trustedProxies,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr, "baseDomain", cfg.BaseDomain)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func mustVerifier(cfg config.FileConfig) *usertoken.Verifier {
	verifier, err := usertoken.NewVerifier(cfg.UserTokenSecret, cfg.UserTokenIssuer)
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}
	return verifier
}
