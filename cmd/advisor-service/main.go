package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/quantrelay/trade-advisor/internal/advisor"
	"github.com/quantrelay/trade-advisor/internal/advisor/cache"
	"github.com/quantrelay/trade-advisor/internal/advisor/dispatch"
	"github.com/quantrelay/trade-advisor/internal/advisor/evidence"
	"github.com/quantrelay/trade-advisor/internal/config"
	"github.com/quantrelay/trade-advisor/internal/ops"
	"github.com/quantrelay/trade-advisor/internal/transport"
	"github.com/quantrelay/trade-advisor/shared/logger"
	"github.com/quantrelay/trade-advisor/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("ADVISOR_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/advisor-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAdvisorConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting advisor service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize RabbitMQ client
	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	appLogger.Info("RabbitMQ connection established")

	// Wire the advisory pipeline
	jobCache := cache.NewStore()

	gatherer := evidence.NewGatherer(&evidence.Config{
		GasProfileURL:  cfg.Resources.GasProfileURL,
		VenueDepthURL:  cfg.Resources.VenueDepthURL,
		RequestTimeout: cfg.Resources.RequestTimeout,
	}, appLogger.Logger)

	engine := advisor.NewEngine(gatherer, appLogger.Logger)

	publisher := transport.NewPublisher(&transport.PublisherConfig{
		RabbitClient:      rabbitClient,
		AcceptRoutingKey:  cfg.RabbitMQ.RoutingKeys.Accept,
		DeliverRoutingKey: cfg.RabbitMQ.RoutingKeys.Deliver,
		Logger:            appLogger.Logger,
	})

	dispatcher := dispatch.NewDispatcher(&dispatch.Config{
		Cache:        jobCache,
		Engine:       engine,
		Transport:    publisher,
		DefaultChain: cfg.Advisor.DefaultChain,
		Logger:       appLogger.Logger,
	})

	consumer := transport.NewConsumer(&transport.ConsumerConfig{
		RabbitClient:  rabbitClient,
		Dispatcher:    dispatcher,
		Concurrency:   cfg.Advisor.Concurrency,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
		Logger:        appLogger.Logger,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consumer in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Start the ops HTTP server
	srv := initOpsServer(cfg, appLogger.Logger, jobCache)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Ops server failed",
				slog.Any("error", err),
			)
			errChan <- err
		}
	}()

	appLogger.Info("Advisor service is running",
		slog.Int("ops_port", cfg.Server.Port),
		slog.Int("concurrency", cfg.Advisor.Concurrency),
		slog.String("default_chain", cfg.Advisor.DefaultChain),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Service error",
			slog.Any("error", err),
		)
		return err
	}

	// Cancel context to stop the consumer
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ops server forced to shutdown",
			slog.Any("error", err),
		)
	}

	if rabbitClient != nil {
		rabbitClient.Close()
	}

	appLogger.Info("Advisor service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		NotifyRoutingKey:   cfg.RoutingKeys.Notify,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// initOpsServer builds the read-only ops HTTP server
func initOpsServer(cfg *config.Config, logger *slog.Logger, jobCache *cache.Store) *http.Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := ops.SetupRouter(&ops.Dependencies{
		Logger: logger,
		Cache:  jobCache,
		App:    cfg.App.Name,
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
