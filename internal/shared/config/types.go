package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`

	// AllowedOrigins enables CORS for browser clients
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDebug reports whether the server runs in debug mode
func (s *ServerConfig) IsDebug() bool {
	return s.Mode == "debug"
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=console json"`
	OutputPath string `mapstructure:"output_path"`
}

// MergeConfig controls how links are merged into the template.
type MergeConfig struct {
	// TemplatePath is the sing-box template read at startup
	TemplatePath string `mapstructure:"template_path"`
	// ImmutableGroups lists grouping tags whose references are never rewritten
	ImmutableGroups []string `mapstructure:"immutable_groups"`
	// Administrative lists tags that must exist exactly once in the output
	Administrative []string `mapstructure:"administrative"`
	MaxLinks       int      `mapstructure:"max_links" validate:"gte=0"`
	OmitOnWarning  bool     `mapstructure:"omit_on_warning"`
}

// GitHubConfig is the publish target for merged configs.
type GitHubConfig struct {
	Token         string `mapstructure:"token"`
	APIBaseURL    string `mapstructure:"api_base_url" validate:"omitempty,url"`
	Owner         string `mapstructure:"owner"`
	Repo          string `mapstructure:"repo"`
	Branch        string `mapstructure:"branch"`
	Path          string `mapstructure:"path"`
	CommitMessage string `mapstructure:"commit_message"`
	MaxRetries    uint   `mapstructure:"max_retries"` // retries after the first attempt
	TimeoutSec    int    `mapstructure:"timeout_sec" validate:"gte=0"`
}

// Enabled reports whether enough is configured to publish
func (g *GitHubConfig) Enabled() bool {
	return g.Token != "" && g.Owner != "" && g.Repo != ""
}

type AuthConfig struct {
	// JWTSecret enables bearer auth on publish endpoints when set
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a Redis host is configured
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// RateLimitConfig caps API requests per client IP. Zero disables a window.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=0"`
	RequestsPerHour   int `mapstructure:"requests_per_hour" validate:"gte=0"`
}

func (r *RateLimitConfig) Enabled() bool {
	return r.RequestsPerMinute > 0 || r.RequestsPerHour > 0
}
