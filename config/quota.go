package config

import (
	"github.com/dustin/go-humanize"
)

// Sizes are human readable strings such as "200MB" or "1MiB".
type quotaConfig struct {
	FreeDailyLimit int    `toml:"free_daily_limit" mapstructure:"free_daily_limit" json:"free_daily_limit"`
	FreeMaxSize    string `toml:"free_max_size" mapstructure:"free_max_size" json:"free_max_size"`
	PremiumMaxSize string `toml:"premium_max_size" mapstructure:"premium_max_size" json:"premium_max_size"`
	ChunkSize      string `toml:"chunk_size" mapstructure:"chunk_size" json:"chunk_size"`
	FreeSpeedLimit string `toml:"free_speed_limit" mapstructure:"free_speed_limit" json:"free_speed_limit"`
}

func parseBytes(s string) (int64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func mustBytes(s string, fallback int64) int64 {
	n, err := parseBytes(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (q quotaConfig) FreeMaxBytes() int64 {
	return mustBytes(q.FreeMaxSize, 200*1000*1000)
}

func (q quotaConfig) PremiumMaxBytes() int64 {
	return mustBytes(q.PremiumMaxSize, 4*1000*1000*1000)
}

func (q quotaConfig) ChunkBytes() int {
	return int(mustBytes(q.ChunkSize, 1<<20))
}

// FreeSpeedBytes returns the per second download cap of the free tier, 0 when unlimited.
func (q quotaConfig) FreeSpeedBytes() int64 {
	n, _ := parseBytes(q.FreeSpeedLimit)
	return n
}
