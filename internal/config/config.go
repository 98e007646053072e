package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Search     SearchConfig     `mapstructure:"search"`
	Session    SessionConfig    `mapstructure:"session"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type BotConfig struct {
	Token         string `mapstructure:"token"`
	UpdateTimeout int    `mapstructure:"update_timeout"`
}

// ProvidersConfig drives the generation race. Each endpoint races the
// others; within an endpoint the models form an ordered fallback chain.
type ProvidersConfig struct {
	Default     string             `mapstructure:"default"`
	Temperature float64            `mapstructure:"temperature"`
	TopP        float64            `mapstructure:"top_p"`
	Endpoints   []ProviderEndpoint `mapstructure:"endpoints"`
}

type ProviderEndpoint struct {
	Name    string   `mapstructure:"name"`
	BaseURL string   `mapstructure:"base_url"`
	APIKey  string   `mapstructure:"api_key"`
	Models  []string `mapstructure:"models"`
}

// KnownModels flattens every endpoint's model chain into one list.
func (p ProvidersConfig) KnownModels() []string {
	var all []string
	for _, ep := range p.Endpoints {
		all = append(all, ep.Models...)
	}
	return all
}

type SearchConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Region     string        `mapstructure:"region"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`

	TavilyAPIKey string `mapstructure:"tavily_api_key"`
	GoogleAPIKey string `mapstructure:"google_api_key"`
	GoogleCXID   string `mapstructure:"google_cx_id"`
	JinaAPIKey   string `mapstructure:"jina_api_key"`
}

type SessionConfig struct {
	Type       string      `mapstructure:"type"` // redis or memory
	MaxHistory int         `mapstructure:"max_history"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	MaxSize int           `mapstructure:"max_size"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	Output string     `mapstructure:"output"`
	File   FileConfig `mapstructure:"file"`
}

type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

type I18nConfig struct {
	DefaultLanguage string   `mapstructure:"default_language"`
	Languages       []string `mapstructure:"languages"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.BindEnv("bot.token", "BOT_TOKEN")
	viper.BindEnv("session.redis.addr", "REDIS_ADDR")
	viper.BindEnv("session.redis.password", "REDIS_PASSWORD")
	viper.BindEnv("session.redis.db", "REDIS_DB")
	viper.BindEnv("search.tavily_api_key", "TAVILY_API_KEY")
	viper.BindEnv("search.google_api_key", "GOOGLE_SEARCH_API_KEY")
	viper.BindEnv("search.google_cx_id", "GOOGLE_SEARCH_CX_ID")
	viper.BindEnv("search.jina_api_key", "JINA_API_KEY")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Per-endpoint API keys come from env vars named after the endpoint
	// (GROQ_API_KEY, CEREBRAS_API_KEY, ...), overriding the file value.
	for i := range config.Providers.Endpoints {
		ep := &config.Providers.Endpoints[i]
		envKey := envName(ep.Name) + "_API_KEY"
		if v := viper.GetString(envKey); v != "" {
			ep.APIKey = v
		}
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.UpdateTimeout == 0 {
		cfg.Bot.UpdateTimeout = 60
	}
	if cfg.Providers.Temperature == 0 {
		cfg.Providers.Temperature = 0.6
	}
	if cfg.Providers.TopP == 0 {
		cfg.Providers.TopP = 0.93
	}
	if cfg.Session.MaxHistory == 0 {
		cfg.Session.MaxHistory = 10
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 10
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 15 * time.Second
	}
	if cfg.Search.Region == "" {
		cfg.Search.Region = "IN"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Bot.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	if len(cfg.Providers.Endpoints) == 0 {
		return fmt.Errorf("at least one provider endpoint is required")
	}
	for _, ep := range cfg.Providers.Endpoints {
		if len(ep.Models) == 0 {
			return fmt.Errorf("endpoint %q has no models configured", ep.Name)
		}
	}
	return nil
}

func envName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-'a'+'A')
		case r == '-':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
