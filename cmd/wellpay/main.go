package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rookgm/wellpay/config"
	"github.com/rookgm/wellpay/internal/gateway"
	handler "github.com/rookgm/wellpay/internal/handler/http"
	"github.com/rookgm/wellpay/internal/mailer"
	"github.com/rookgm/wellpay/internal/metrics"
	"github.com/rookgm/wellpay/internal/middleware"
	"github.com/rookgm/wellpay/internal/repository"
	"github.com/rookgm/wellpay/internal/repository/postgres"
	"github.com/rookgm/wellpay/internal/service"
	"github.com/rookgm/wellpay/internal/worker"
	"go.uber.org/zap"
)

const statusGaugeInterval = 15 * time.Second

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// dependency injection
	orderRepo := repository.NewOrderRepository(db)
	gw := gateway.New(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	mail := mailer.New(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.Sender, cfg.Email.TemplateID)

	paymentService := service.NewPaymentService(orderRepo, gw, mail, service.Secrets{
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
	}, m, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)

	statusProcessor := worker.NewStatusProcessor(paymentService, m, logger, statusGaugeInterval)
	go statusProcessor.Run(ctx)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger))
	router.Use(middleware.Metrics(m))

	router.Post("/api/orders", paymentHandler.CreateOrder())
	router.Get("/api/orders/{id}", paymentHandler.GetOrder())
	router.Post("/api/payments/verify", paymentHandler.VerifyPayment())
	router.Post("/api/webhooks/razorpay", paymentHandler.Webhook())

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	logger.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}
