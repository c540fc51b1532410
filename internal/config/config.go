package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Monitoring surface. SourcesFile points at a YAML file mapping
	// category names to URL lists; Sources is an inline fallback used
	// when no file is configured.
	SourcesFile string   `envconfig:"SOURCES_FILE"`
	Sources     []string `envconfig:"SOURCES"`

	MaxConcurrentFetches int           `envconfig:"MAX_CONCURRENT_FETCHES" default:"5"`
	FetchTimeout         time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	FetchInterval        time.Duration `envconfig:"FETCH_INTERVAL" default:"30m"`
	FetchRetries         int           `envconfig:"FETCH_RETRIES" default:"3"`
	UserAgent            string        `envconfig:"USER_AGENT" default:"Government-Services-Bot/1.0 (Educational Purpose)"`

	DiscoverEnabled  bool          `envconfig:"DISCOVER_ENABLED" default:"false"`
	DiscoverInterval time.Duration `envconfig:"DISCOVER_INTERVAL" default:"24h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("GOVWATCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// MonitoredURLs resolves the monitored URL set: the sources file when
// configured, otherwise the inline list.
func (c *Config) MonitoredURLs() ([]string, error) {
	if c.SourcesFile != "" {
		sources, err := LoadSources(c.SourcesFile)
		if err != nil {
			return nil, err
		}
		return sources.URLs(), nil
	}
	return dedupe(c.Sources), nil
}
