package config

import (
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
)

type ServerConfig struct {
	// HTTP listen port
	Port string `env:"PORT" envDefault:"5250"`
}

type DatabaseConfig struct {
	// Path to the SQLite database file
	Path string `env:"DATABASE_PATH" envDefault:"data/rubkoff.db"`
}

type CatalogConfig struct {
	// JSON file used to seed the catalog when the houses table is empty
	SeedPath string `env:"CATALOG_SEED_PATH" envDefault:"config/houses_seed.json"`

	// Buffer size of the ingestion queue (in batches)
	QueueSize int `env:"CATALOG_QUEUE_SIZE" envDefault:"10"`

	// Maximum number of retries for failed batches
	MaxRetries int `env:"CATALOG_MAX_RETRIES" envDefault:"3"`

	// Delay between retries in seconds
	RetryDelay int `env:"CATALOG_RETRY_DELAY" envDefault:"5"`
}

type OpenAIConfig struct {
	APIKey      string  `env:"OPENAI_API_KEY"`
	Model       string  `env:"OPENAI_MODEL" envDefault:"gpt-4"`
	MaxTokens   int     `env:"OPENAI_MAX_TOKENS" envDefault:"2000"`
	Temperature float64 `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`

	// Request rate limit towards the OpenAI API
	RequestsPerSecond float64 `env:"OPENAI_RPS" envDefault:"3"`
	Burst             int     `env:"OPENAI_BURST" envDefault:"5"`
}

type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Chat that receives house-selection notifications
	NotificationChatID string `env:"NOTIFICATION_CHAT_ID"`

	Enabled bool `env:"TELEGRAM_NOTIFICATIONS_ENABLED" envDefault:"false"`
}

type RecommendationConfig struct {
	// Number of candidates handed to the narrative generator
	TopK int `env:"RECOMMENDATION_TOP_K" envDefault:"5"`

	// Number of recommendations persisted and shown per user
	SaveLimit int `env:"RECOMMENDATION_SAVE_LIMIT" envDefault:"3"`

	// Mock mode skips the OpenAI call and serves seeded mock output
	MockMode bool  `env:"MOCK_MODE" envDefault:"false"`
	MockSeed int64 `env:"MOCK_SEED" envDefault:"1"`
}

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Catalog        CatalogConfig
	OpenAI         OpenAIConfig
	Telegram       TelegramConfig
	Recommendation RecommendationConfig

	// Comma-separated admin user IDs
	AdminIDs string `env:"ADMIN_IDS"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AdminIDList parses the comma-separated ADMIN_IDS value; malformed
// entries are skipped.
func (c *Config) AdminIDList() []int64 {
	var ids []int64
	for _, part := range strings.Split(c.AdminIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
