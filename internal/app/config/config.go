package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type TelegramConfig struct {
	Token            string        `yaml:"token" env:"BOT_TOKEN" env-required:"true"`
	ModerationChatID int64         `yaml:"moderation_chat_id" env:"MODERATION_CHAT_ID" env-required:"true"`
	ChannelID        int64         `yaml:"channel_id" env:"CHANNEL_ID" env-required:"true"`
	PollTimeout      time.Duration `yaml:"poll_timeout" env:"POLL_TIMEOUT" env-default:"30s"`
	Debug            bool          `yaml:"debug" env:"BOT_DEBUG" env-default:"false"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User     string `yaml:"user" env:"MONGO_USER"`
	Password string `yaml:"password" env:"MONGO_PASSWORD"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"market_bot_db"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type SMTPConfig struct {
	Host            string        `yaml:"host" env:"SMTP_HOST"`
	Port            int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username        string        `yaml:"username" env:"SMTP_USERNAME"`
	Password        string        `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail     string        `yaml:"sender_email" env:"SMTP_SENDER_EMAIL"`
	Encryption      string        `yaml:"encryption" env:"SMTP_ENCRYPTION" env-default:"tls"`
	ServerName      string        `yaml:"server_name" env:"SMTP_SERVER_NAME"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SMTP_WRITE_TIMEOUT" env-default:"10s"`
	ModeratorEmails []string      `yaml:"moderator_emails" env:"MODERATOR_EMAILS" env-separator:","`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"listing-photos"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type ListingCacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"LISTING_CACHE_TTL" env-default:"1h"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type TracingConfig struct {
	Enabled      bool   `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
}

type Config struct {
	Env          string             `yaml:"env" env:"ENV" env-default:"local"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	MongoDB      MongoDBConfig      `yaml:"mongo"`
	Redis        RedisConfig        `yaml:"redis"`
	NATS         NATSConfig         `yaml:"nats"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	MinIO        MinIOConfig        `yaml:"minio"`
	ListingCache ListingCacheConfig `yaml:"listing_cache"`
	Logger       LoggerConfig       `yaml:"logger"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
