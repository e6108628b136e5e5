package redis

import (
	"errors"
	"time"
)

// Config defines the Redis connection configuration
type Config struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Connection pool settings
	PoolSize     int `mapstructure:"poolsize"`
	MinIdleConns int `mapstructure:"minidleconns"`

	// Timeouts
	DialTimeout  time.Duration `mapstructure:"dialtimeout"`
	ReadTimeout  time.Duration `mapstructure:"readtimeout"`
	WriteTimeout time.Duration `mapstructure:"writetimeout"`

	MaxRetries int `mapstructure:"maxretries"`
}

// DefaultConfig returns the default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	}
}

// Validate validates the Redis configuration
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("redis: addr is required")
	}
	if c.DB < 0 {
		return errors.New("redis: db must be non-negative")
	}
	return nil
}
