package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads configuration from a yaml file (CONFIG_PATH or
// configs/config.<APP_ENV>.yaml) overlaid with AUTH_-prefixed environment
// variables. Missing file is fine; the environment alone can carry the full
// surface.
func LoadConfig() (*Config, error) {
	setDefaults()

	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(fmt.Sprintf("config.%s", env))
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("AUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing file means env-only configuration; anything else is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWT.SigningKey == "" {
		return errors.New("jwt.signing_key must be set")
	}
	if cfg.JWT.SigningKeyID == "" {
		return errors.New("jwt.signing_key_id must be set")
	}
	if (cfg.JWT.PreviousSigningKey == "") != (cfg.JWT.PreviousSigningKeyID == "") {
		return errors.New("jwt.previous_signing_key and jwt.previous_signing_key_id must be set together")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "15s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("database.migrations_path", "migrations")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Secrets have no usable default; registering the keys lets env-only
	// deployments reach them through Unmarshal.
	viper.SetDefault("jwt.signing_key", "")
	viper.SetDefault("jwt.signing_key_id", "")
	viper.SetDefault("jwt.previous_signing_key", "")
	viper.SetDefault("jwt.previous_signing_key_id", "")

	viper.SetDefault("jwt.issuer", "hw13-rest")
	viper.SetDefault("jwt.access_token_ttl", "15m")
	viper.SetDefault("jwt.refresh_token_ttl", "168h")
	viper.SetDefault("jwt.verification_token_ttl", "24h")
	viper.SetDefault("jwt.clock_skew_leeway", "30s")

	viper.SetDefault("security.password_hash.memory", 65536)
	viper.SetDefault("security.password_hash.iterations", 3)
	viper.SetDefault("security.password_hash.parallelism", 2)
	viper.SetDefault("security.password_hash.salt_length", 16)
	viper.SetDefault("security.password_hash.key_length", 32)

	viper.SetDefault("security.rate_limiting.enabled", true)
	viper.SetDefault("security.rate_limiting.store", "memory")
	viper.SetDefault("security.rate_limiting.login.enabled", true)
	viper.SetDefault("security.rate_limiting.login.limit", 10)
	viper.SetDefault("security.rate_limiting.login.window", "60s")
	viper.SetDefault("security.rate_limiting.register.enabled", true)
	viper.SetDefault("security.rate_limiting.register.limit", 5)
	viper.SetDefault("security.rate_limiting.register.window", "60s")
	viper.SetDefault("security.rate_limiting.refresh.enabled", true)
	viper.SetDefault("security.rate_limiting.refresh.limit", 30)
	viper.SetDefault("security.rate_limiting.refresh.window", "60s")
	viper.SetDefault("security.rate_limiting.verify.enabled", true)
	viper.SetDefault("security.rate_limiting.verify.limit", 10)
	viper.SetDefault("security.rate_limiting.verify.window", "60s")
	viper.SetDefault("security.rate_limiting.general.enabled", true)
	viper.SetDefault("security.rate_limiting.general.limit", 120)
	viper.SetDefault("security.rate_limiting.general.window", "60s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
