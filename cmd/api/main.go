package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/app"
	"github.com/xavierca1/buyer-leads/internal/config"
	"github.com/xavierca1/buyer-leads/internal/infra/auth"
	apihttp "github.com/xavierca1/buyer-leads/internal/infra/http"
	"github.com/xavierca1/buyer-leads/internal/infra/http/handlers"
	"github.com/xavierca1/buyer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/buyer-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/buyer-leads/internal/infra/mail"
	"github.com/xavierca1/buyer-leads/internal/infra/queue"
	"github.com/xavierca1/buyer-leads/internal/infra/worker"
	"github.com/xavierca1/buyer-leads/internal/logger"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	// 1. Stores
	stores, err := app.OpenStores(ctx, cfg, true, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	// 2. Events and the worker reacting to them
	var (
		events   usecase.EventPublisher
		rabbitMQ *amqp091.Connection
	)
	if cfg.QueueEnabled() {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer mq.Close()
		rabbitMQ = mq.Conn
		events = queue.NewProducer(mq.Ch)

		consumerCh, err := mq.Conn.Channel()
		if err != nil {
			return err
		}
		eventWorker := queue.NewWorker(consumerCh, notifier(cfg), crm(cfg), log)
		go func() {
			if err := eventWorker.Start(ctx); err != nil {
				log.WithError(err).Error("lead event worker exited")
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set; lead events are not published")
	}

	// 3. Stats
	stats := worker.NewLeadStatsWorker(stores.Leads, middleware.SetLeadsByStatus, cfg.StatsInterval, log)
	go stats.Start(ctx)

	// 4. UseCases
	uc := app.NewUseCases(stores, events, log)

	// 5. Auth
	users, err := auth.ParseDirectory(cfg.Session.DemoUsers)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)

	// 6. Handlers and router
	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:   log,
		Sessions: tokens,
		Leads:    handlers.NewLeadHandler(uc.Create, uc.Update, uc.Get, uc.List, log),
		Imports: handlers.NewImportHandler(
			uc.Import,
			uc.Export,
			handlers.ImportLimits{MaxRows: cfg.Import.MaxRows, MaxBytes: cfg.Import.MaxBytes},
			handlers.NewRateLimiter(cfg.Import.RatePerMin),
			log,
		),
		Auth:           handlers.NewAuthHandler(users, tokens, cfg.IsProduction(), log),
		Health:         handlers.NewHealthHandler(stores.DB, rabbitMQ, cfg.KommoEnabled()),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("buyer-leads API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func notifier(cfg *config.Config) queue.ImportNotifier {
	if !cfg.MailEnabled() || !cfg.Import.NotifyByMail {
		return nil
	}
	return mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
}

func crm(cfg *config.Config) queue.CRMSyncer {
	if !cfg.KommoEnabled() {
		return nil
	}
	return kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.APIToken)
}
