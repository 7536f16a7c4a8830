package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Resources ResourcesConfig `yaml:"resources"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Logging   LoggingConfig   `yaml:"logging"`
	App       AppConfig       `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange/queue configuration
type RabbitMQConfig struct {
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	User        string            `yaml:"user"`
	Password    string            `yaml:"password"`
	VHost       string            `yaml:"vhost"`
	Exchange    ExchangeConfig    `yaml:"exchange"`
	Queue       QueueConfig       `yaml:"queue"`
	RoutingKeys RoutingKeysConfig `yaml:"routing_keys"`
	Connection  ConnectionConfig  `yaml:"connection"`
	Publish     PublishConfig     `yaml:"publish"`
	Consumer    ConsumerConfig    `yaml:"consumer"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// QueueConfig holds the notification queue configuration
type QueueConfig struct {
	Name       string `yaml:"name"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`
}

// RoutingKeysConfig holds the routing keys for consumed phase
// notifications and published accept/deliver signals
type RoutingKeysConfig struct {
	Notify  string `yaml:"notify"`
	Accept  string `yaml:"accept"`
	Deliver string `yaml:"deliver"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// ConsumerConfig holds RabbitMQ consumer settings
type ConsumerConfig struct {
	PrefetchCount int  `yaml:"prefetch_count"`
	AutoAck       bool `yaml:"auto_ack"`
	Exclusive     bool `yaml:"exclusive"`
}

// ResourcesConfig holds the external data resource endpoints
type ResourcesConfig struct {
	GasProfileURL  string        `yaml:"gas_profile_url"`
	VenueDepthURL  string        `yaml:"venue_depth_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// AdvisorConfig holds advisory pipeline configuration
type AdvisorConfig struct {
	DefaultChain string `yaml:"default_chain"`
	Concurrency  int    `yaml:"concurrency"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level            string `yaml:"level"`
	Format           string `yaml:"format"`
	Output           string `yaml:"output"`
	EnableCaller     bool   `yaml:"enable_caller"`
	EnableStackTrace bool   `yaml:"enable_stack_trace"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// ValidateAdvisorConfig checks the configuration the advisor service
// needs. Missing transport or resource settings are fatal at startup.
func (c *Config) ValidateAdvisorConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq host is required")
	}

	if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
		return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
	}

	if c.RabbitMQ.Exchange.Name == "" {
		return fmt.Errorf("rabbitmq exchange name is required")
	}

	if c.RabbitMQ.Queue.Name == "" {
		return fmt.Errorf("rabbitmq queue name is required")
	}

	if c.RabbitMQ.RoutingKeys.Accept == "" || c.RabbitMQ.RoutingKeys.Deliver == "" {
		return fmt.Errorf("rabbitmq accept and deliver routing keys are required")
	}

	if c.Resources.GasProfileURL == "" {
		return fmt.Errorf("gas profile resource url is required")
	}

	if c.Resources.VenueDepthURL == "" {
		return fmt.Errorf("venue depth resource url is required")
	}

	if c.Advisor.DefaultChain == "" {
		return fmt.Errorf("advisor default chain is required")
	}

	if c.Advisor.Concurrency <= 0 {
		return fmt.Errorf("advisor concurrency must be greater than 0")
	}

	return nil
}

// ValidateResourceSimConfig checks the configuration the resource
// simulator needs.
func (c *Config) ValidateResourceSimConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	return nil
}
