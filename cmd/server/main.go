package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"branchpulse/internal/app"
	"branchpulse/internal/config"
	"branchpulse/internal/notify"
	"branchpulse/internal/server"
	"branchpulse/internal/session"
	"branchpulse/internal/storage"
	"branchpulse/internal/store"
	"branchpulse/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var st store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		logger.Warn("no databaseURL configured, using in-memory store")
	}

	var blobs storage.BlobStore
	var uploadsDir string
	if cfg.S3Endpoint != "" {
		blobs, err = storage.NewMinioStore(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
		logger.Info("using object storage", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		fileStore, err := storage.NewFileStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("failed to init upload dir: %v", err)
		}
		blobs = fileStore
		uploadsDir = fileStore.Dir()
	}

	var revoker session.Revoker
	if cfg.RedisAddr != "" {
		revoker = session.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
		logger.Info("token revocation backed by redis", "addr", cfg.RedisAddr)
	} else {
		revoker = session.NewMemoryRevoker()
	}
	sessions, err := session.New(cfg.TokenSecret, tokenTTL, revoker)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	var publisher notify.Publisher = notify.NoopPublisher{}
	if cfg.AMQPURL != "" {
		publisher, err = notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			log.Fatalf("failed to connect to amqp: %v", err)
		}
		logger.Info("publishing submission events", "queue", cfg.AMQPQueue)
	}
	defer publisher.Close()

	appCore, err := app.New(app.Config{
		Store:             st,
		Sessions:          sessions,
		Blobs:             blobs,
		Publisher:         publisher,
		Branches:          cfg.Branches,
		AllowRegistration: cfg.AllowRegistration,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App:               appCore,
		UploadsDir:        uploadsDir,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		AllowedExtensions: cfg.AllowedExtensions,
	})

	handler := util.WithRequestID(
		util.WithRequestLog("feedback",
			util.WithSecurityHeaders(
				util.WithCORS(cfg.AllowedOrigins, httpServer.Router()))))

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}
