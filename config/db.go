package config

type dbConfig struct {
	Path    string `toml:"path" mapstructure:"path"`
	Session string `toml:"session" mapstructure:"session"`
	// custom thumbnails uploaded by premium users
	ThumbDir string `toml:"thumb_dir" mapstructure:"thumb_dir" json:"thumb_dir"`
}
