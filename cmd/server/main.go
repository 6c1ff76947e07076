package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/storetrack/storetrack/internal/auth"
	"github.com/storetrack/storetrack/internal/checkout"
	"github.com/storetrack/storetrack/internal/config"
	"github.com/storetrack/storetrack/internal/es"
	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/handlers"
	"github.com/storetrack/storetrack/internal/logging"
	"github.com/storetrack/storetrack/internal/search"
	httpserver "github.com/storetrack/storetrack/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	var producer *events.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{cfg.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	var indexer *search.Indexer
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(es.Config{
			URL:      cfg.ES_URL,
			Username: cfg.ES_USER,
			Password: cfg.ES_PASSWORD,
		})
		if err != nil {
			log.Fatalf("elasticsearch error: %v", err)
		}
		indexer = search.NewIndexer(esClient, cfg.ES_INDEX)
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	tokens := &auth.TokenService{JWTSecret: []byte(cfg.JWT_SECRET)}

	var pub events.Publisher
	if producer != nil {
		pub = producer
	}

	deps := &httpserver.Deps{
		Tokens:          tokens,
		AuthHandler:     &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: pub},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: pub, Indexer: indexer},
		CartHandler:     &handlers.CartHandler{DB: db, Producer: pub},
		CheckoutHandler: &handlers.CheckoutHandler{Checkout: checkout.NewService(db), Producer: pub},
		OrderHandler:    &handlers.OrderHandler{DB: db},
		AdminHandler:    &handlers.AdminHandler{DB: db, Producer: pub},
	}
	if indexer != nil {
		deps.SearchHandler = &handlers.SearchHandler{Indexer: indexer}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
