package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/alert"
	"github.com/parishops/sla-monitor/internal/api"
	"github.com/parishops/sla-monitor/internal/scheduler"
	"github.com/parishops/sla-monitor/internal/sla"
	"github.com/parishops/sla-monitor/internal/storage"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load .env if present, then configuration
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("PARISH_SLA")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		logger.Fatal("Failed to read config file", zap.Error(err))
	}

	// Open storage
	store, err := storage.Open(viper.GetString("database.path"), logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.SeedStaff(ctx, viper.GetString("alerts.admin_email")); err != nil {
		logger.Fatal("Failed to seed staff", zap.Error(err))
	}

	// Core SLA components
	registry := sla.NewThresholdRegistry(store, logger)
	scanner := sla.NewItemScanner(store, viper.GetDuration("database.query_timeout"), logger)
	dedup := sla.NewAlertDeduplicator(store, logger)
	snapshots := sla.NewSnapshotBuilder(scanner, registry, logger)

	// Notification channels
	var channels []alert.Channel
	if viper.GetString("smtp.host") != "" {
		channels = append(channels, alert.NewEmailChannel(alert.EmailConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
			From:     viper.GetString("smtp.from"),
		}, logger))
	} else {
		logger.Warn("SMTP not configured, email alerts disabled")
	}

	// Optional in-app notification feed over NATS JetStream
	var publisher alert.Publisher
	if viper.GetBool("nats.enabled") {
		opts := []nats.Option{
			nats.Name(viper.GetString("app.name")),
			nats.MaxReconnects(viper.GetInt("nats.max_reconnects")),
			nats.ReconnectWait(viper.GetDuration("nats.reconnect_wait")),
			nats.Timeout(viper.GetDuration("nats.connect_timeout")),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				logger.Warn("NATS disconnected", zap.Error(err))
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			}),
		}

		var nc *nats.Conn
		maxRetries := 5
		for i := 0; i < maxRetries; i++ {
			nc, err = nats.Connect(viper.GetString("nats.url"), opts...)
			if err == nil {
				break
			}
			logger.Warn("Failed to connect to NATS, retrying...",
				zap.Int("attempt", i+1),
				zap.Error(err))
			time.Sleep(time.Second * time.Duration(i+1))
		}
		if err != nil {
			logger.Fatal("Failed to connect to NATS after retries", zap.Error(err))
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			logger.Fatal("Failed to create JetStream context", zap.Error(err))
		}

		publisher, err = alert.NewStreamPublisher(js, logger)
		if err != nil {
			logger.Fatal("Failed to create alert stream publisher", zap.Error(err))
		}
		logger.Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))
	}

	dispatcher := alert.NewDispatcher(channels, store, store, dedup, publisher, logger)
	monitor := sla.NewMonitor(scanner, registry, dedup, dispatcher, store, logger)

	// Background scheduler
	sched := scheduler.NewScheduler(monitor, store, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// HTTP surface
	router := api.NewRouter(api.Deps{
		Logger:    logger,
		Monitor:   monitor,
		Snapshots: snapshots,
		Registry:  registry,
		Settings:  store,
		Alerts:    store,
		Scheduler: sched,
		StartedAt: time.Now(),
	})

	srv := &http.Server{
		Addr:         viper.GetString("http.addr"),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}

	logger.Info("Server shutting down gracefully")
}
