package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"snapbook/internal/config"
	"snapbook/internal/database"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/payment"
	"snapbook/internal/events"
	"snapbook/internal/jobs"
	"snapbook/internal/logger"
)

// cleanup runs the scheduled maintenance jobs once, for cron hosts that do
// not keep the API running.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.New(cfg.Log)

	db, err := database.Connect(cfg.DB.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// expiry only touches the attempt table, so no gateway or locker is needed
	payments := payment.NewService(payment.NewRepository(db), nil, nil, nil, nil, events.NopPublisher{},
		payment.Options{AttemptTTL: cfg.MoMo.AttemptTTL}, log)
	days := availability.NewService(availability.NewRepository(db))

	if err := jobs.NewScheduler(payments, days, log).RunOnce(context.Background()); err != nil {
		log.Fatalf("cleanup: %v", err)
	}
	log.Info("cleanup completed")
}
