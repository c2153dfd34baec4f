package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Monitor  MonitorConfig   `mapstructure:"monitor"`
	Scraper  ScraperConfig   `mapstructure:"scraper"`
	Database DatabaseConfig  `mapstructure:"database"`
	OpenAI   OpenAIConfig    `mapstructure:"openai"`
	Telegram TelegramConfig  `mapstructure:"telegram"`
	Accounts []AccountConfig `mapstructure:"accounts"`
	Products []ProductConfig `mapstructure:"products"`
}

type MonitorConfig struct {
	PollInterval             time.Duration `mapstructure:"poll_interval"`
	StalenessThreshold       time.Duration `mapstructure:"staleness_threshold"`
	AITimeout                time.Duration `mapstructure:"ai_timeout"`
	ContextRetention         int           `mapstructure:"context_retention"`
	MaxContextMessages       int           `mapstructure:"max_context_messages"`
	FingerprintContentLength int           `mapstructure:"fingerprint_content_length"`
}

type ScraperConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type TelegramConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Token          string `mapstructure:"token"`
	OperatorChatID int64  `mapstructure:"operator_chat_id"`
}

type AccountConfig struct {
	Email string `mapstructure:"email"`
}

type ProductConfig struct {
	ID          string  `mapstructure:"id"`
	Title       string  `mapstructure:"title"`
	Description string  `mapstructure:"description"`
	Price       float64 `mapstructure:"price"`
	Condition   string  `mapstructure:"condition"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("monitor.poll_interval", "60s")
	v.SetDefault("monitor.staleness_threshold", "24h")
	v.SetDefault("monitor.ai_timeout", "30s")
	v.SetDefault("monitor.context_retention", 10)
	v.SetDefault("monitor.max_context_messages", 5)
	v.SetDefault("monitor.fingerprint_content_length", 50)
	v.SetDefault("scraper.base_url", "http://localhost:8077")
	v.SetDefault("scraper.timeout", "30s")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 150)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("telegram.enabled", false)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	return &config, nil
}

// Validate rejects configurations the monitoring loop must not start with.
func (c *Config) Validate() error {
	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("monitor.poll_interval must be positive")
	}
	if c.Monitor.StalenessThreshold <= 0 {
		return fmt.Errorf("monitor.staleness_threshold must be positive")
	}
	if c.Monitor.AITimeout <= 0 {
		return fmt.Errorf("monitor.ai_timeout must be positive")
	}
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url is required")
	}
	if c.Database.UseInMemory && len(c.Accounts) == 0 {
		return fmt.Errorf("no accounts configured: the monitor will not start with zero viable accounts")
	}
	for i, account := range c.Accounts {
		if strings.TrimSpace(account.Email) == "" {
			return fmt.Errorf("accounts[%d]: email is required", i)
		}
	}
	if c.Telegram.Enabled {
		if c.Telegram.Token == "" {
			return fmt.Errorf("telegram.token is required when telegram is enabled")
		}
		if c.Telegram.OperatorChatID == 0 {
			return fmt.Errorf("telegram.operator_chat_id is required when telegram is enabled")
		}
	}
	return nil
}
