package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/job-gateway/internal/api/auth"
	"github.com/cuongbtq/job-gateway/internal/api/handler"
	"github.com/cuongbtq/job-gateway/internal/api/metrics"
	"github.com/cuongbtq/job-gateway/internal/api/router"
	"github.com/cuongbtq/job-gateway/internal/config"
	"github.com/cuongbtq/job-gateway/shared/logger"
	"github.com/cuongbtq/job-gateway/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	bootLogger := logger.NewDefault()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		bootLogger.Info("No .env file found, using environment variables or flags")
	}

	configPath := flag.String("config", os.Getenv("GATEWAY_CONFIG_PATH"), "Path to configuration file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	rootLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer rootLogger.Close()

	appLogger := rootLogger.With(slog.String("app", cfg.App.Name))

	appLogger.Info("Starting job gateway",
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.Int("api_keys", len(cfg.Auth.APIKeys)),
		slog.Any("protected_routes", cfg.Auth.ProtectedRoutes),
	)

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.WithGroup("rabbitmq").Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	r := initRouter(cfg, appLogger.Logger, rabbitClient)

	// Bind before serving so a taken port fails startup
	listener, err := listen(cfg.Server.Port)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	appLogger.Info("Job gateway is running",
		slog.String("address", listener.Addr().String()),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// listen binds the HTTP port on all interfaces
func listen(port int) (net.Listener, error) {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return listener, nil
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
		URL:              cfg.URL,
		ExchangeName:     cfg.Exchange,
		QueueName:        cfg.Queue,
		RoutingKey:       cfg.RoutingKey,
		DeclareOnPublish: cfg.DeclareOnPublish,
		RetryAttempts:    cfg.Connection.RetryAttempts,
		RetryInterval:    cfg.Connection.RetryInterval,
		Heartbeat:        cfg.Connection.Heartbeat,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, logger *slog.Logger, rabbitClient *rabbitmq.Client) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	deps := &handler.Dependencies{
		Logger:    logger,
		Publisher: rabbitClient,
		Metrics:   metrics.New(),
	}

	return router.SetupRouter(deps, router.Options{
		Guard:     auth.NewGuard(cfg.Auth.APIKeys, cfg.Auth.ProtectedRoutes),
		BodyLimit: cfg.Server.BodyLimit,
	})
}
