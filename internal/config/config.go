package config

import (
	"bytes"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ScraperConfig struct {
	UserAgent      string `yaml:"userAgent"`
	AcceptLanguage string `yaml:"acceptLanguage"`
	TimeoutMs      int    `yaml:"timeoutMs"`
	MaxRedirects   int    `yaml:"maxRedirects"`
	MaxBodyBytes   int64  `yaml:"maxBodyBytes"`
}

type RobotsConfig struct {
	Respect bool `yaml:"respect"`
}

type RodConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BrowserURL string `yaml:"browserURL"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig protects /v1 with a static bearer token.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"perMinute"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// AnthropicConfig has no model setting; the Anthropic model is fixed.
type AnthropicConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

type GoogleLLMConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

type LLMConfig struct {
	Provider  string          `yaml:"provider"`
	TimeoutMs int             `yaml:"timeoutMs"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Google    GoogleLLMConfig `yaml:"google"`
}

// ExtractConfig controls how fetched pages are handed to the LLM.
type ExtractConfig struct {
	// PageFormat is "html" (raw page) or "markdown" (reduced page).
	PageFormat   string `yaml:"pageFormat"`
	MaxPageChars int    `yaml:"maxPageChars"`
}

type DraftsConfig struct {
	TTLMinutes int `yaml:"ttlMinutes"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

// RetentionConfig bounds how long extraction log rows are kept.
type RetentionConfig struct {
	ExtractionDays  int `yaml:"extractionDays"`
	IntervalMinutes int `yaml:"intervalMinutes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Robots    RobotsConfig    `yaml:"robots"`
	Rod       RodConfig       `yaml:"rod"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	LLM       LLMConfig       `yaml:"llm"`
	Extract   ExtractConfig   `yaml:"extract"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Storage   StorageConfig   `yaml:"storage"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

func Load(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	return cfg
}

// Parse decodes YAML config and applies defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued settings.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Scraper.TimeoutMs == 0 {
		c.Scraper.TimeoutMs = 15000
	}
	if c.Scraper.MaxRedirects == 0 {
		c.Scraper.MaxRedirects = 5
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "anthropic"
	}
	if c.LLM.TimeoutMs == 0 {
		c.LLM.TimeoutMs = 60000
	}
	if c.Extract.PageFormat == "" {
		c.Extract.PageFormat = "html"
	}
	if c.Drafts.TTLMinutes == 0 {
		c.Drafts.TTLMinutes = 24 * 60
	}
	if c.Retention.IntervalMinutes == 0 {
		c.Retention.IntervalMinutes = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}
