package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "singmerge/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server" validate:"required"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger" validate:"required"`
	Merge     sharedConfig.MergeConfig     `mapstructure:"merge" validate:"required"`
	GitHub    sharedConfig.GitHubConfig    `mapstructure:"github"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"rate_limit"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error; defaults and SINGMERGE_* variables apply.
func Load(env string) (*Config, error) {
	return LoadFile(env, "")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(env, path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("SINGMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{})

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")

	// Merge defaults
	v.SetDefault("merge.template_path", "configs/template.json")
	v.SetDefault("merge.immutable_groups", []string{})
	v.SetDefault("merge.administrative", []string{"direct", "block"})
	v.SetDefault("merge.max_links", 50)
	v.SetDefault("merge.omit_on_warning", false)

	// GitHub defaults (token, owner and repo must be configured)
	v.SetDefault("github.token", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.path", "config.json")
	v.SetDefault("github.commit_message", "Update sing-box config")
	v.SetDefault("github.max_retries", 3)
	v.SetDefault("github.timeout_sec", 15)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "singmerge")

	// Redis defaults (only used by the rate limiter)
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Rate limit defaults (disabled)
	v.SetDefault("rate_limit.requests_per_minute", 0)
	v.SetDefault("rate_limit.requests_per_hour", 0)
}
