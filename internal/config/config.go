package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"PrimeTerminal/internal/calculator"
	"PrimeTerminal/internal/logging"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Log     logging.Config `yaml:"log"`
	Scoring struct {
		Policy        string   `yaml:"policy"`
		Verdict       string   `yaml:"verdict"`
		RiskFreeRate  *float64 `yaml:"risk_free_rate"`
		DefaultPeriod string   `yaml:"default_period"`
	} `yaml:"scoring"`
	DataSource struct {
		QueryURL  string        `yaml:"query_url"`
		CookieURL string        `yaml:"cookie_url"`
		RateLimit float64       `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
		CacheDir  string        `yaml:"cache_dir"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
		Mock      bool          `yaml:"mock"`
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIURL   string `yaml:"api_url"`
	} `yaml:"telegram"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Database struct {
		Driver        string `yaml:"driver"` // sqlite or file
		SQLitePath    string `yaml:"sqlite_path"`
		FavoritesFile string `yaml:"favorites_file"`
	} `yaml:"database"`
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Report struct {
		OutputDir  string  `yaml:"output_dir"`
		Investment float64 `yaml:"investment"`
	} `yaml:"report"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file and a .env file next to the working
// directory, then applies environment variable overrides and defaults.
// A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"HTTPS_PROXY":          &c.Proxy,
		"SQLITE_PATH":          &c.Database.SQLitePath,
		"CRON_DIGEST":          &c.Schedule.DigestCron,
		"PRIME_LOG_LEVEL":      &c.Log.Level,
		"PRIME_SCORING_POLICY": &c.Scoring.Policy,
		"PRIME_VERDICT_POLICY": &c.Scoring.Verdict,
		"PRIME_PERIOD":         &c.Scoring.DefaultPeriod,
		"PRIME_CACHE_DIR":      &c.DataSource.CacheDir,
		"PRIME_STORE_DRIVER":   &c.Database.Driver,
		"PRIME_SERVER_ADDR":    &c.Server.Addr,
		"PRIME_REPORT_DIR":     &c.Report.OutputDir,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("PRIME_RISK_FREE_RATE"); v != "" {
		rf, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PRIME_RISK_FREE_RATE: %w", err)
		}
		c.Scoring.RiskFreeRate = &rf
	}
	if v := os.Getenv("PRIME_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PRIME_CACHE_TTL: %w", err)
		}
		c.DataSource.CacheTTL = ttl
	}
	bools := map[string]*bool{
		"PRIME_MOCK":       &c.DataSource.Mock,
		"PRIME_LOG_PRETTY": &c.Log.Pretty,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Scoring.Policy == "" {
		c.Scoring.Policy = strategy.DefaultPolicy.Name
	}
	if c.Scoring.Verdict == "" {
		c.Scoring.Verdict = strategy.DefaultVerdictPolicy.Name
	}
	if c.Scoring.DefaultPeriod == "" {
		c.Scoring.DefaultPeriod = string(model.Period5y)
	}
	if c.DataSource.RateLimit == 0 {
		c.DataSource.RateLimit = 2
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.CacheTTL == 0 {
		c.DataSource.CacheTTL = time.Hour
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 0 22 * * 1-5"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/prime_terminal.db"
	}
	if c.Database.FavoritesFile == "" {
		c.Database.FavoritesFile = "data/favorites.json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if c.Report.Investment == 0 {
		c.Report.Investment = 1000
	}
}

// RiskFree returns the configured annual risk-free rate.
func (c *Config) RiskFree() float64 {
	if c.Scoring.RiskFreeRate == nil {
		return calculator.DefaultRiskFreeRate
	}
	return *c.Scoring.RiskFreeRate
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if _, err := strategy.ParsePolicy(c.Scoring.Policy); err != nil {
		return fmt.Errorf("scoring.policy: %w", err)
	}
	if _, err := strategy.ParseVerdictPolicy(c.Scoring.Verdict); err != nil {
		return fmt.Errorf("scoring.verdict: %w", err)
	}
	if _, err := model.ParsePeriod(c.Scoring.DefaultPeriod); err != nil {
		return fmt.Errorf("scoring.default_period: %w", err)
	}
	if rf := c.RiskFree(); rf < -1 || rf > 1 {
		return fmt.Errorf("scoring.risk_free_rate must be a fraction, got %v", rf)
	}
	if c.DataSource.RateLimit < 0 {
		return fmt.Errorf("data_source.rate_limit must not be negative")
	}
	if c.DataSource.CacheTTL < 0 {
		return fmt.Errorf("data_source.cache_ttl must not be negative")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "file":
	default:
		return fmt.Errorf("database.driver must be sqlite or file, got %q", c.Database.Driver)
	}
	if _, err := CronParser.Parse(c.Schedule.DigestCron); err != nil {
		return fmt.Errorf("schedule.digest_cron: %w", err)
	}
	if c.Report.Investment < 0 {
		return fmt.Errorf("report.investment must not be negative")
	}
	return nil
}

// ValidateTelegram checks the fields the Telegram digest needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// CronParser accepts the six-field (with seconds) expressions used in config.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
