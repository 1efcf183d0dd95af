package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Sentiment   SentimentConfig
	Twitter     TwitterConfig
	YouTube     YouTubeConfig
	Instagram   InstagramConfig
	Scraper     ScraperConfig
	Enrichment  EnrichmentConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	TokenTTLHours int
}

type SentimentConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutSec int
}

type TwitterConfig struct {
	BearerToken string
	MaxReplies  int
}

type YouTubeConfig struct {
	APIKey      string
	MaxComments int
}

type InstagramConfig struct {
	SessionID string
}

type ScraperConfig struct {
	UserAgent  string
	MaxReviews int
	TimeoutSec int
}

type EnrichmentConfig struct {
	Enabled      bool
	OpenAIAPIKey string
	Model        string
	MaxTokens    int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sentimentscope")

	viper.SetEnvPrefix("SENTIMENTSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 120)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/sentimentscope.db")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("auth.tokenTTLHours", 24)

	viper.SetDefault("sentiment.endpoint", "https://api-inference.huggingface.co")
	viper.SetDefault("sentiment.model", "nlptown/bert-base-multilingual-uncased-sentiment")
	viper.SetDefault("sentiment.timeoutSec", 30)

	viper.SetDefault("twitter.maxReplies", 50)

	viper.SetDefault("youtube.maxComments", 50)

	viper.SetDefault("scraper.userAgent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	viper.SetDefault("scraper.maxReviews", 50)
	viper.SetDefault("scraper.timeoutSec", 30)

	viper.SetDefault("enrichment.enabled", false)
	viper.SetDefault("enrichment.model", "gpt-4o-mini")
	viper.SetDefault("enrichment.maxTokens", 256)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
