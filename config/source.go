package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type sourceConfig struct {
	Timeout        time.Duration `toml:"timeout" mapstructure:"timeout"`
	ConnectTimeout time.Duration `toml:"connect_timeout" mapstructure:"connect_timeout" json:"connect_timeout"`
	Retry          int           `toml:"retry" mapstructure:"retry"`
	UserAgent      string        `toml:"user_agent" mapstructure:"user_agent" json:"user_agent"`
	Proxy          string        `toml:"proxy" mapstructure:"proxy"`
	DriveCookie    string        `toml:"drive_cookie" mapstructure:"drive_cookie" json:"drive_cookie"`

	// per host settings, decoded on demand
	Hosts map[string]any `toml:"-" mapstructure:",remain"`
}

// FolderMode decides how multi-entry locker shares are delivered.
type FolderMode string

const (
	FolderModeEach FolderMode = "each"
	FolderModeZip  FolderMode = "zip"
)

type TeraboxConfig struct {
	Cookie     string     `mapstructure:"cookie"`
	APIBases   []string   `mapstructure:"api_bases"`
	FolderMode FolderMode `mapstructure:"folder_mode"`
	// render landing pages with a headless browser before scraping
	Browser          bool   `mapstructure:"browser"`
	BrowserDriverDir string `mapstructure:"browser_driver_dir"`
}

func (s sourceConfig) Terabox() (TeraboxConfig, error) {
	var tb TeraboxConfig
	raw, ok := s.Hosts["terabox"]
	if ok {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &tb,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return tb, err
		}
		if err := decoder.Decode(raw); err != nil {
			return tb, fmt.Errorf("failed to decode source.terabox: %w", err)
		}
	}
	switch tb.FolderMode {
	case "":
		tb.FolderMode = FolderModeEach
	case FolderModeEach, FolderModeZip:
	default:
		return tb, fmt.Errorf("invalid source.terabox.folder_mode: %s", tb.FolderMode)
	}
	return tb, nil
}
