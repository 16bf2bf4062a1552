package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/taiwanleaftea/ceca-bank-payments/handler"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/opensearch"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
	"github.com/taiwanleaftea/ceca-bank-payments/provider/ceca"
	"github.com/taiwanleaftea/ceca-bank-payments/router"
)

func main() {
	// .env is optional in containers
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Load Env Error: %v", err)
	}

	cfg := config.GetAppConfig()

	// OpenSearch audit trail and system log sink
	var (
		osClient *opensearch.Client
		osLogger *opensearch.Logger
	)
	if cfg.EnableLogging {
		client, err := opensearch.NewClient(cfg, ceca.Name)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			osClient = client
			osLogger = opensearch.NewLogger(client)
		}
	}

	if osLogger != nil {
		logger.InitGlobalLogger(osLogger)
	} else {
		logger.InitGlobalLogger(nil)
	}

	gatewayCfg, err := config.LoadGatewayConfig()
	if err != nil {
		logger.Fatal("Invalid gateway configuration", err)
	}
	logger.Info("Gateway configuration loaded", logger.LogContext{
		Provider: ceca.Name,
		Fields: map[string]any{
			"config": gatewayCfg.String(),
		},
	})

	sqliteStore, err := order.NewSQLiteStore(cfg.OrderDBPath, cfg.ShopURL)
	if err != nil {
		logger.Fatal("Failed to open order database", err)
	}
	defer sqliteStore.Close()
	store := order.NewRetryStore(sqliteStore, 2*time.Second)

	dependencies := []handler.Dependency{
		{Name: "orders", Ping: sqliteStore.Ping, Critical: true},
	}

	// Per-order lock, shared across replicas when redis is configured
	var locker order.Locker = order.NewKeyedMutex()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		locker = order.NewRedisLocker(rdb, 30*time.Second)
		dependencies = append(dependencies, handler.Dependency{
			Name:     "redis",
			Ping:     func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			Critical: true,
		})
	}

	if osClient != nil {
		dependencies = append(dependencies, handler.Dependency{Name: "opensearch", Ping: osClient.Ping})
	}

	gateway, err := provider.CreateGateway(ceca.Name, provider.Dependencies{
		Config: gatewayCfg,
		Store:  store,
		Locker: locker,
	})
	if err != nil {
		logger.Fatal("Failed to create payment gateway", err)
	}

	var audit provider.AuditLogger
	var logReader handler.WebhookLogReader
	if osLogger != nil {
		audit = osLogger
		logReader = osLogger
	}

	paymentService := provider.NewPaymentService(store, audit, cfg.BaseURL, gateway)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := router.New(router.Handlers{
		Payment: handler.NewPaymentHandler(paymentService, config.App().Validator, map[string]handler.FormRenderer{
			ceca.Name: ceca.RenderForm,
		}),
		Logs:   handler.NewLogsHandler(logReader),
		Health: handler.NewHealthHandler(paymentService, dependencies...),
	}, router.Options{
		APIKey:      cfg.APIKey,
		RateLimit:   cfg.RateLimit,
		IPWhitelist: cfg.IPWhitelist,
		FormActions: []string{"https://tpv.ceca.es", "https://pgw.ceca.es"},
		Done:        ctx.Done(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Fields: map[string]any{
			"port":       cfg.Port,
			"notify_url": ceca.NotifyURL(cfg.BaseURL),
			"opensearch": osLogger != nil,
			"redis_lock": cfg.RedisAddr != "",
		},
	})

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
