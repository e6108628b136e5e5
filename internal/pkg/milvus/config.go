package milvus

import (
	"errors"
	"time"
)

// Config represents the configuration for the Milvus client
type Config struct {
	// Connection settings
	Address  string `mapstructure:"address"`  // Milvus server address (e.g., "localhost:19530")
	Username string `mapstructure:"username"` // Username for authentication (optional)
	Password string `mapstructure:"password"` // Password for authentication (optional)
	APIKey   string `mapstructure:"apikey"`   // API key for cloud service (optional)

	// Database settings
	Database string `mapstructure:"database"` // Database name (optional, default "default")

	// Timeout settings
	DialTimeout    time.Duration `mapstructure:"dialtimeout"`
	RequestTimeout time.Duration `mapstructure:"requesttimeout"`

	// Retry settings
	MaxRetries int           `mapstructure:"maxretries"`
	RetryDelay time.Duration `mapstructure:"retrydelay"`
}

// SetDefaults fills unset fields with default values
func (c *Config) SetDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("milvus: address is required")
	}
	if c.APIKey != "" && (c.Username != "" || c.Password != "") {
		return errors.New("milvus: cannot use both API key and username/password authentication")
	}
	if c.MaxRetries < 0 {
		return errors.New("milvus: max retries must be non-negative")
	}
	if c.RetryDelay < 0 {
		return errors.New("milvus: retry delay must be non-negative")
	}
	return nil
}
