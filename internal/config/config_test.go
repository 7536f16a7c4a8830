package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			assert.Equal(t, 8091, cfg.Server.Port)
			assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
			assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
			assert.Equal(t, 5672, cfg.RabbitMQ.Port)
			assert.Equal(t, "jobs.exchange", cfg.RabbitMQ.Exchange.Name)
			assert.Equal(t, "advisor.notifications", cfg.RabbitMQ.Queue.Name)
			assert.Equal(t, "job.notify", cfg.RabbitMQ.RoutingKeys.Notify)
			assert.Equal(t, "job.accept", cfg.RabbitMQ.RoutingKeys.Accept)
			assert.Equal(t, "job.deliver", cfg.RabbitMQ.RoutingKeys.Deliver)
			assert.Equal(t, "http://localhost:9210/v1/gas-profile", cfg.Resources.GasProfileURL)
			assert.Equal(t, "http://localhost:9210/v1/venue-depth", cfg.Resources.VenueDepthURL)
			assert.Equal(t, 5*time.Second, cfg.Resources.RequestTimeout)
			assert.Equal(t, "ethereum", cfg.Advisor.DefaultChain)
			assert.Equal(t, 4, cfg.Advisor.Concurrency)
			assert.Equal(t, "debug", cfg.Logging.Level)
			assert.Equal(t, "trade-advisor", cfg.App.Name)
		})
	}
}

func validConfig() *Config {
	cfg, err := Load("testdata/valid_config.yaml")
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestValidateAdvisorConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{
			name:   "valid config passes",
			mutate: func(c *Config) {},
		},
		{
			name:      "server port out of range",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			errString: "invalid server port",
		},
		{
			name:      "missing rabbitmq host",
			mutate:    func(c *Config) { c.RabbitMQ.Host = "" },
			errString: "rabbitmq host is required",
		},
		{
			name:      "rabbitmq port out of range",
			mutate:    func(c *Config) { c.RabbitMQ.Port = 70000 },
			errString: "invalid rabbitmq port",
		},
		{
			name:      "missing exchange name",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "missing queue name",
			mutate:    func(c *Config) { c.RabbitMQ.Queue.Name = "" },
			errString: "rabbitmq queue name is required",
		},
		{
			name:      "missing accept routing key",
			mutate:    func(c *Config) { c.RabbitMQ.RoutingKeys.Accept = "" },
			errString: "accept and deliver routing keys are required",
		},
		{
			name:      "missing deliver routing key",
			mutate:    func(c *Config) { c.RabbitMQ.RoutingKeys.Deliver = "" },
			errString: "accept and deliver routing keys are required",
		},
		{
			name:      "missing gas profile url",
			mutate:    func(c *Config) { c.Resources.GasProfileURL = "" },
			errString: "gas profile resource url is required",
		},
		{
			name:      "missing venue depth url",
			mutate:    func(c *Config) { c.Resources.VenueDepthURL = "" },
			errString: "venue depth resource url is required",
		},
		{
			name:      "missing default chain",
			mutate:    func(c *Config) { c.Advisor.DefaultChain = "" },
			errString: "advisor default chain is required",
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Advisor.Concurrency = 0 },
			errString: "advisor concurrency must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAdvisorConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestValidateResourceSimConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.ValidateResourceSimConfig())

	cfg.Server.Port = -1
	err := cfg.ValidateResourceSimConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}
