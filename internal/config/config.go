package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535

	// DefaultPort is used when neither the config file nor PORT sets one
	DefaultPort = 3000
	// DefaultBodyLimit is the maximum accepted request body size in bytes
	DefaultBodyLimit = 1048576
	// DefaultAMQPURL is the broker URL used when none is configured
	DefaultAMQPURL = "amqp://localhost"
)

// Environment variable names that override the config file
const (
	EnvPort            = "PORT"
	EnvAPIKeys         = "API_KEYS"
	EnvProtectedRoutes = "PROTECTED_ROUTES"
	EnvAMQPURL         = "AMQP_URL"
	EnvJobExchange     = "JOB_EXCHANGE"
	EnvJobRoutingKey   = "JOB_ROUTING_KEY"
	EnvJobQueue        = "JOB_QUEUE"
	EnvBodyLimit       = "BODY_LIMIT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvAppEnvironment  = "APP_ENV"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Logging  LoggingConfig  `yaml:"logging"`
	App      AppConfig      `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	BodyLimit       int64         `yaml:"body_limit"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds the static API keys and the route prefixes they guard
type AuthConfig struct {
	APIKeys         []string `yaml:"api_keys"`
	ProtectedRoutes []string `yaml:"protected_routes"`
}

// RabbitMQConfig holds the broker URL and the job destination
type RabbitMQConfig struct {
	URL              string           `yaml:"url"`
	Exchange         string           `yaml:"exchange"`
	Queue            string           `yaml:"queue"`
	RoutingKey       string           `yaml:"routing_key"`
	DeclareOnPublish bool             `yaml:"declare_on_publish"`
	Connection       ConnectionConfig `yaml:"connection"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	Heartbeat     time.Duration `yaml:"heartbeat"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Default returns a configuration populated with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			BodyLimit:       DefaultBodyLimit,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			APIKeys:         []string{},
			ProtectedRoutes: []string{},
		},
		RabbitMQ: RabbitMQConfig{
			URL:              DefaultAMQPURL,
			DeclareOnPublish: true,
			Connection: ConnectionConfig{
				RetryAttempts: 5,
				RetryInterval: 2 * time.Second,
				Heartbeat:     10 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		App: AppConfig{
			Name:        "job-gateway",
			Environment: "development",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// configPath and finally the process environment.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides configuration values from environment variables.
// List variables are JSON arrays, e.g. API_KEYS='["key1","key2"]'.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}

	if v, ok := lookup(EnvBodyLimit); ok && v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvBodyLimit, err)
		}
		c.Server.BodyLimit = limit
	}

	if v, ok := lookup(EnvAPIKeys); ok && v != "" {
		keys, err := parseStringList(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvAPIKeys, err)
		}
		c.Auth.APIKeys = keys
	}

	if v, ok := lookup(EnvProtectedRoutes); ok && v != "" {
		routes, err := parseStringList(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvProtectedRoutes, err)
		}
		c.Auth.ProtectedRoutes = routes
	}

	if v, ok := lookup(EnvAMQPURL); ok && v != "" {
		c.RabbitMQ.URL = v
	}
	if v, ok := lookup(EnvJobExchange); ok && v != "" {
		c.RabbitMQ.Exchange = v
	}
	if v, ok := lookup(EnvJobRoutingKey); ok && v != "" {
		c.RabbitMQ.RoutingKey = v
	}
	if v, ok := lookup(EnvJobQueue); ok && v != "" {
		c.RabbitMQ.Queue = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvAppEnvironment); ok && v != "" {
		c.App.Environment = v
	}

	return nil
}

// parseStringList decodes a JSON array of strings
func parseStringList(raw string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("server body_limit must be greater than 0")
	}

	if c.RabbitMQ.URL == "" {
		return fmt.Errorf("rabbitmq url is required")
	}

	if c.RabbitMQ.Exchange == "" {
		return fmt.Errorf("rabbitmq exchange name is required")
	}

	if c.RabbitMQ.Queue == "" {
		return fmt.Errorf("rabbitmq queue name is required")
	}

	if c.RabbitMQ.Connection.RetryAttempts <= 0 {
		return fmt.Errorf("rabbitmq connection retry_attempts must be greater than 0")
	}

	return nil
}
