package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"currency-rate-alerts/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Daily     DailyConfig     `mapstructure:"daily"`
	Bot       BotConfig       `mapstructure:"bot"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ProviderConfig covers the currency-rate provider endpoint.
type ProviderConfig struct {
	URL            string        `mapstructure:"url"`
	Pair           string        `mapstructure:"pair"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// DetectorConfig tunes the EWMA anomaly detector.
type DetectorConfig struct {
	Lambda        float64       `mapstructure:"lambda"`
	ZThreshold    float64       `mapstructure:"z_threshold"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	WarmupSamples int           `mapstructure:"warmup_samples"`
	Epsilon       float64       `mapstructure:"epsilon"`
}

// StorageConfig locates the flat state and history files.
type StorageConfig struct {
	StatePath   string `mapstructure:"state_path"`
	HistoryPath string `mapstructure:"history_path"`
}

// SchedulerConfig governs the long-running sampling cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// TelegramConfig holds bot credentials and routing.
type TelegramConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BotToken    string `mapstructure:"bot_token"`
	ChatID      string `mapstructure:"chat_id"`
	APIEndpoint string `mapstructure:"api_endpoint"`
}

// DailyConfig parameterises the scheduled daily sender.
type DailyConfig struct {
	StartDate string `mapstructure:"start_date"`
	TotalDays int    `mapstructure:"total_days"`
	Timezone  string `mapstructure:"timezone"`
	TestDate  string `mapstructure:"test_date"`
	TestHour  string `mapstructure:"test_hour"`
}

// BotConfig configures the trigger-reply bot.
type BotConfig struct {
	Triggers map[string]string `mapstructure:"triggers"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RATEWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindLegacyEnv(v)
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bindLegacyEnv keeps the short variable names used by existing cron and CI
// deployments working alongside the prefixed form.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("telegram.bot_token", "RATEWATCHER_TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "RATEWATCHER_TELEGRAM_CHAT_ID", "CHAT_ID")
	_ = v.BindEnv("daily.test_date", "RATEWATCHER_DAILY_TEST_DATE", "TEST_DATE")
	_ = v.BindEnv("daily.test_hour", "RATEWATCHER_DAILY_TEST_HOUR", "TEST_HOUR")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ratewatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("provider.url", "https://halykbank.kz/api/gradation-ccy")
	v.SetDefault("provider.pair", "EUR/KZT")
	v.SetDefault("provider.request_timeout", "20s")
	v.SetDefault("provider.user_agent", "Mozilla/5.0")

	v.SetDefault("detector.lambda", 0.1)
	v.SetDefault("detector.z_threshold", 3.0)
	v.SetDefault("detector.cooldown", "3h")
	v.SetDefault("detector.warmup_samples", 48)
	v.SetDefault("detector.epsilon", 1e-12)

	v.SetDefault("storage.state_path", "data/state.json")
	v.SetDefault("storage.history_path", "data/history.csv")

	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.api_endpoint", "")

	v.SetDefault("daily.start_date", "2025-12-29")
	v.SetDefault("daily.total_days", 365)
	v.SetDefault("daily.timezone", "Asia/Qostanay")

	v.SetDefault("bot.triggers", map[string]string{})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Provider.URL == "" {
		return fmt.Errorf("provider.url is required")
	}
	if c.Provider.Pair == "" {
		return fmt.Errorf("provider.pair is required")
	}
	if c.Provider.RequestTimeout <= 0 {
		return fmt.Errorf("provider.request_timeout must be greater than zero")
	}
	if c.Detector.Lambda <= 0 || c.Detector.Lambda > 1 {
		return fmt.Errorf("detector.lambda must be within (0, 1]")
	}
	if c.Detector.ZThreshold <= 0 {
		return fmt.Errorf("detector.z_threshold must be greater than zero")
	}
	if c.Detector.Cooldown < 0 {
		return fmt.Errorf("detector.cooldown cannot be negative")
	}
	if c.Detector.WarmupSamples < 1 {
		return fmt.Errorf("detector.warmup_samples must be at least 1")
	}
	if c.Detector.Epsilon <= 0 {
		return fmt.Errorf("detector.epsilon must be greater than zero")
	}
	if c.Storage.StatePath == "" {
		return fmt.Errorf("storage.state_path is required")
	}
	if c.Storage.HistoryPath == "" {
		return fmt.Errorf("storage.history_path is required")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Daily.TotalDays < 1 {
		return fmt.Errorf("daily.total_days must be at least 1")
	}
	if _, err := time.Parse("2006-01-02", c.Daily.StartDate); err != nil {
		return fmt.Errorf("daily.start_date must be YYYY-MM-DD: %w", err)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}
