package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Search   SearchConfig   `mapstructure:"search"`
	Draft    DraftConfig    `mapstructure:"draft"`
	Audit    AuditConfig    `mapstructure:"audit"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// SearchConfig describes a JSON search API. Endpoint carries {query} and {limit} placeholders.
type SearchConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	APIKeyHeader string        `mapstructure:"api_key_header"`
	APIKey       string        `mapstructure:"api_key"`
	ResultPath   string        `mapstructure:"result_path"`
	TitleField   string        `mapstructure:"title_field"`
	URLField     string        `mapstructure:"url_field"`
	SnippetField string        `mapstructure:"snippet_field"`
	ScoreField   string        `mapstructure:"score_field"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type DraftConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuditConfig struct {
	MaxHops             int           `mapstructure:"max_hops"`
	QueryTimeout        time.Duration `mapstructure:"query_timeout"`
	OpponentConcurrency int           `mapstructure:"opponent_concurrency"`
	QueryConcurrency    int           `mapstructure:"query_concurrency"`
	SearchCacheTTL      time.Duration `mapstructure:"search_cache_ttl"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(logCtx, v)

	v.SetEnvPrefix("EV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("search_configured", cfg.Search.Endpoint != ""),
		slog.Bool("draft_configured", cfg.Draft.APIKey != ""),
		slog.Bool("nats_configured", cfg.NATS.URL != ""),
	)

	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Audit.MaxHops < 1 || c.Audit.MaxHops > 3 {
		return errors.New("audit.max_hops must be between 1 and 3")
	}
	if c.Audit.QueryTimeout <= 0 {
		return errors.New("audit.query_timeout must be positive")
	}
	if c.Draft.Timeout < 0 {
		return errors.New("draft.timeout must not be negative")
	}
	if c.Audit.OpponentConcurrency < 1 || c.Audit.QueryConcurrency < 1 {
		return errors.New("audit concurrency limits must be at least 1")
	}
	return nil
}

func setDefaults(ctx context.Context, v *viper.Viper) {
	if ctx == nil {
		return
	}

	v.SetDefault("app.name", "candidatevet")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/candidatevet.sqlite")
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.api_key_header", "X-Subscription-Token")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.result_path", "web.results")
	v.SetDefault("search.title_field", "title")
	v.SetDefault("search.url_field", "url")
	v.SetDefault("search.snippet_field", "description")
	v.SetDefault("search.score_field", "")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", "15s")

	v.SetDefault("draft.base_url", "")
	v.SetDefault("draft.api_key", "")
	v.SetDefault("draft.model", "gpt-4o-mini")
	v.SetDefault("draft.timeout", "60s")

	v.SetDefault("audit.max_hops", 3)
	v.SetDefault("audit.query_timeout", "15s")
	v.SetDefault("audit.opponent_concurrency", 4)
	v.SetDefault("audit.query_concurrency", 4)
	v.SetDefault("audit.search_cache_ttl", "6h")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "candidatevet")
}
