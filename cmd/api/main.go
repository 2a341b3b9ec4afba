package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"snapbook/internal/app"
	"snapbook/internal/config"
	"snapbook/internal/database"
	"snapbook/internal/database/schema"
	"snapbook/internal/domain/payment"
	"snapbook/internal/events"
	"snapbook/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.New(cfg.Log)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DB.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := schema.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, stopRedis, err := openRedis(cfg, log)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer stopRedis()

	publisher := newPublisher(cfg.Kafka, log)
	defer publisher.Close()

	uploader, err := app.NewUploader(cfg.Upload)
	if err != nil {
		log.Fatalf("uploader: %v", err)
	}

	a, err := app.New(app.Deps{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Gateway:   payment.NewMoMoGateway(cfg.MoMo),
		Uploader:  uploader,
	})
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	if cfg.Jobs.Enabled {
		if err := a.Jobs.Start(); err != nil {
			log.Fatalf("jobs: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "env": cfg.AppEnv}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if cfg.Jobs.Enabled {
		a.Jobs.Stop()
	}
	a.Hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server exited")
}

// openRedis connects to REDIS_URL. Outside prod an empty URL starts an
// embedded server so the API runs without external services.
func openRedis(cfg *config.Config, log logrus.FieldLogger) (*redis.Client, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.Redis.URL != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return rdb, func() { _ = rdb.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	log.WithField("addr", mr.Addr()).Warn("REDIS_URL is empty, using embedded redis")
	rdb, err := database.ConnectRedis(ctx, "redis://"+mr.Addr())
	if err != nil {
		mr.Close()
		return nil, nil, err
	}
	return rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}, nil
}

func newPublisher(cfg config.KafkaConfig, log logrus.FieldLogger) events.Publisher {
	if !cfg.Enabled {
		log.Info("kafka disabled, events are not published")
		return events.NopPublisher{}
	}
	if err := events.EnsureTopics(cfg.Brokers, []string{cfg.PaymentsTopic, cfg.OffersTopic}, log); err != nil {
		log.WithError(err).Warn("could not ensure kafka topics")
	}
	return events.NewKafkaPublisher(cfg.Brokers, log)
}
