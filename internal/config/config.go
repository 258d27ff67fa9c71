package config

import (
	"fmt"
	"time"
)

// Config is the full environment-supplied configuration of the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN renders the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr renders the host:port pair for the redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configures token signing. PreviousSigningKey keeps tokens signed
// before the last key rotation verifiable during the grace period.
type JWTConfig struct {
	Issuer               string        `mapstructure:"issuer"`
	SigningKey           string        `mapstructure:"signing_key"`
	SigningKeyID         string        `mapstructure:"signing_key_id"`
	PreviousSigningKey   string        `mapstructure:"previous_signing_key"`
	PreviousSigningKeyID string        `mapstructure:"previous_signing_key_id"`
	AccessTokenTTL       time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL      time.Duration `mapstructure:"refresh_token_ttl"`
	VerificationTokenTTL time.Duration `mapstructure:"verification_token_ttl"`
	ClockSkewLeeway      time.Duration `mapstructure:"clock_skew_leeway"`
}

type PasswordHashConfig struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// RateLimitRule defines the threshold for one route class.
type RateLimitRule struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// RateLimitConfig holds the per-route-class rules. Store selects the counter
// backend: "memory" (default, counters reset on restart) or "redis".
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Store    string        `mapstructure:"store"`
	Login    RateLimitRule `mapstructure:"login"`
	Register RateLimitRule `mapstructure:"register"`
	Refresh  RateLimitRule `mapstructure:"refresh"`
	Verify   RateLimitRule `mapstructure:"verify"`
	General  RateLimitRule `mapstructure:"general"`
}

type SecurityConfig struct {
	PasswordHash PasswordHashConfig `mapstructure:"password_hash"`
	RateLimiting RateLimitConfig    `mapstructure:"rate_limiting"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
