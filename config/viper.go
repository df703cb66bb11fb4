package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Lang       string  `toml:"lang" mapstructure:"lang" json:"lang"`
	Owners     []int64 `toml:"owners" mapstructure:"owners" json:"owners"`
	LogChannel int64   `toml:"log_channel" mapstructure:"log_channel" json:"log_channel"`

	Temp     tempConfig     `toml:"temp" mapstructure:"temp"`
	Log      logConfig      `toml:"log" mapstructure:"log"`
	DB       dbConfig       `toml:"db" mapstructure:"db"`
	Telegram telegramConfig `toml:"telegram" mapstructure:"telegram"`
	Quota    quotaConfig    `toml:"quota" mapstructure:"quota"`
	Progress progressConfig `toml:"progress" mapstructure:"progress"`
	Queue    queueConfig    `toml:"queue" mapstructure:"queue"`
	Source   sourceConfig   `toml:"source" mapstructure:"source"`
	Cache    cacheConfig    `toml:"cache" mapstructure:"cache"`
	Mirror   mirrorConfig   `toml:"mirror" mapstructure:"mirror"`
	API      apiConfig      `toml:"api" mapstructure:"api"`
	ForceSub forceSubConfig `toml:"force_sub" mapstructure:"force_sub" json:"force_sub"`
}

type tempConfig struct {
	BasePath string `toml:"base_path" mapstructure:"base_path" json:"base_path"`
}

type logConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

type progressConfig struct {
	Interval time.Duration `toml:"interval" mapstructure:"interval"`
}

type queueConfig struct {
	ItemDelay time.Duration `toml:"item_delay" mapstructure:"item_delay" json:"item_delay"`
}

type apiConfig struct {
	Enable     bool     `toml:"enable" mapstructure:"enable"`
	Port       int      `toml:"port" mapstructure:"port"`
	Token      string   `toml:"token" mapstructure:"token"`
	TrustedIPs []string `toml:"trusted_ips" mapstructure:"trusted_ips" json:"trusted_ips"`
}

var cfg = &Config{}

func C() *Config {
	return cfg
}

// IsOwner reports whether the user is listed in owners.
func (c *Config) IsOwner(userID int64) bool {
	return slices.Contains(c.Owners, userID)
}

func setDefaults() {
	viper.SetDefault("lang", "en")

	viper.SetDefault("telegram.app_id", 1025907)
	viper.SetDefault("telegram.app_hash", "452b0359b988148995f22ff0f4229750")
	viper.SetDefault("telegram.rpc_retry", 5)
	viper.SetDefault("telegram.flood_retry", 5)
	viper.SetDefault("telegram.upload_threads", 4)

	viper.SetDefault("temp.base_path", "downloads/")
	viper.SetDefault("log.level", "INFO")

	viper.SetDefault("db.path", "data/savelink.db")
	viper.SetDefault("db.session", "data/session.db")
	viper.SetDefault("db.thumb_dir", "data/thumbs")

	viper.SetDefault("quota.free_daily_limit", 5)
	viper.SetDefault("quota.free_max_size", "200MB")
	viper.SetDefault("quota.premium_max_size", "4GB")
	viper.SetDefault("quota.chunk_size", "1MiB")
	viper.SetDefault("quota.free_speed_limit", "0")

	viper.SetDefault("progress.interval", "8s")
	viper.SetDefault("queue.item_delay", "3s")

	viper.SetDefault("source.timeout", "2h")
	viper.SetDefault("source.connect_timeout", "60s")
	viper.SetDefault("source.retry", 3)
	viper.SetDefault("source.user_agent", defaultUserAgent)
	viper.SetDefault("source.terabox.api_bases", []string{
		"https://www.terabox.com",
		"https://www.1024terabox.com",
		"https://www.terabox.app",
	})
	viper.SetDefault("source.terabox.folder_mode", "each")

	viper.SetDefault("cache.ttl", 600)
	viper.SetDefault("cache.num_counters", 1e5)
	viper.SetDefault("cache.max_cost", 1e6)

	viper.SetDefault("mirror.base_path", "savelink")

	viper.SetDefault("api.port", 8080)
}

func Init(ctx context.Context, configFile ...string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}

	if len(configFile) > 0 && configFile[0] != "" {
		viper.SetConfigFile(configFile[0])
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/savelink/")
	}
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("SAVELINK")
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	setDefaults()

	if len(configFile) == 0 || configFile[0] == "" {
		if err := viper.SafeWriteConfigAs("config.toml"); err != nil {
			if _, ok := err.(viper.ConfigFileAlreadyExistsError); !ok {
				return fmt.Errorf("error saving default config: %w", err)
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("error unmarshalling config file: %w", err)
	}
	if err := loaded.validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}
	if c.Quota.FreeDailyLimit < 0 {
		return fmt.Errorf("quota.free_daily_limit must not be negative, got %d", c.Quota.FreeDailyLimit)
	}
	for _, key := range []string{"free_max_size", "premium_max_size", "chunk_size", "free_speed_limit"} {
		if _, err := parseBytes(viper.GetString("quota." + key)); err != nil {
			return fmt.Errorf("invalid quota.%s: %w", key, err)
		}
	}
	if c.Progress.Interval <= 0 {
		return fmt.Errorf("progress.interval must be positive, got %s", c.Progress.Interval)
	}
	if _, err := c.Source.Terabox(); err != nil {
		return err
	}
	if c.API.Enable && c.API.Token == "" {
		return errors.New("api.token is required when the api is enabled")
	}
	if c.Mirror.Enable && (c.Mirror.Endpoint == "" || c.Mirror.BucketName == "") {
		return errors.New("mirror.endpoint and mirror.bucket_name are required when mirror is enabled")
	}
	return nil
}
