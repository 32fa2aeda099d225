package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	// Encryption.Key protects the sensitive application fields. A missing
	// key stops startup: there is no degraded plaintext mode.
	Encryption struct {
		Key string `yaml:"key"`
	} `yaml:"encryption"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`

	Scraping struct {
		CodeforcesBaseURL string `yaml:"codeforces_base_url"`
		LeetCodeBaseURL   string `yaml:"leetcode_base_url"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
		MaxRetries        int    `yaml:"max_retries"`
		RetryDelayMS      int    `yaml:"retry_delay_ms"`
	} `yaml:"scraping"`
}

// RequestTimeout is the per-call timeout for the external rating services.
func (c *Config) RequestTimeout() time.Duration {
	if c.Scraping.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Scraping.TimeoutSeconds) * time.Second
}

// RetryDelay is the base delay for linear retry backoff.
func (c *Config) RetryDelay() time.Duration {
	if c.Scraping.RetryDelayMS <= 0 {
		return time.Second
	}
	return time.Duration(c.Scraping.RetryDelayMS) * time.Millisecond
}

var AppConfig *Config

// LoadConfig populates AppConfig. When DATABASE_URL is set the whole
// configuration comes from environment variables (tests, containers);
// otherwise it is read from the yaml file at CONFIG_PATH.
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
	} else {
		cfg.Database.DSN = dbURL
		cfg.Server.Env = os.Getenv("SERVER_ENV")
		cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		cfg.JWT.TTL = 60
	}

	// Secrets may always be overridden from the environment, regardless of
	// where the rest of the config came from.
	if key := os.Getenv("ENCRYPTION_KEY"); key != "" {
		cfg.Encryption.Key = key
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Scraping.CodeforcesBaseURL == "" {
		cfg.Scraping.CodeforcesBaseURL = "https://codeforces.com/api"
	}
	if cfg.Scraping.LeetCodeBaseURL == "" {
		cfg.Scraping.LeetCodeBaseURL = "https://leetcode.com/graphql"
	}
	if cfg.Scraping.MaxRetries == 0 {
		cfg.Scraping.MaxRetries = 3
	}
	if cfg.Scraping.RetryDelayMS == 0 {
		cfg.Scraping.RetryDelayMS = 1000
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
