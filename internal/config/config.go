package config

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment. A .env
// file loaded in main feeds the same keys during local development.
type Config struct {
	ServerAddr    string `mapstructure:"SERVER_ADDR"`
	PostgresDSN   string `mapstructure:"POSTGRES_DSN"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`

	// Proximity tier cutoffs in meters and the notification cooldown.
	HotMeters       float64 `mapstructure:"HOT_METERS"`
	CloseMeters     float64 `mapstructure:"CLOSE_METERS"`
	RangeMeters     float64 `mapstructure:"RANGE_METERS"`
	CooldownMinutes int     `mapstructure:"COOLDOWN_MINUTES"`

	// Optional Telegram ops feed for proximity alerts.
	TelegramBotToken    string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramAlertChatID int64  `mapstructure:"TELEGRAM_ALERT_CHAT_ID"`
}

// Load reads configuration from the environment with sane local defaults.
// A malformed value (e.g. a non-numeric threshold) fails loudly rather than
// degrading to zero values.
func Load() (Config, error) {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("POSTGRES_DSN", "host=localhost user=popin password=popin dbname=popindb port=5432 sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("HOT_METERS", 100.0)
	viper.SetDefault("CLOSE_METERS", 200.0)
	viper.SetDefault("RANGE_METERS", 500.0)
	viper.SetDefault("COOLDOWN_MINUTES", 5)
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("TELEGRAM_ALERT_CHAT_ID", 0)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}
