package config

type telegramConfig struct {
	Token         string        `toml:"token" mapstructure:"token"`
	AppID         int           `toml:"app_id" mapstructure:"app_id" json:"app_id"`
	AppHash       string        `toml:"app_hash" mapstructure:"app_hash" json:"app_hash"`
	Proxy         tgProxyConfig `toml:"proxy" mapstructure:"proxy"`
	RpcRetry      int           `toml:"rpc_retry" mapstructure:"rpc_retry" json:"rpc_retry"`
	FloodRetry    int           `toml:"flood_retry" mapstructure:"flood_retry" json:"flood_retry"`
	UploadThreads int           `toml:"upload_threads" mapstructure:"upload_threads" json:"upload_threads"`
}

type tgProxyConfig struct {
	Enable bool   `toml:"enable" mapstructure:"enable"`
	URL    string `toml:"url" mapstructure:"url"`
}

// forceSubConfig gates the bot behind membership of a channel. Channel is a
// @username or a -100 prefixed id; Link overrides the join url shown to users.
type forceSubConfig struct {
	Channel string `toml:"channel" mapstructure:"channel"`
	Link    string `toml:"link" mapstructure:"link"`
}
