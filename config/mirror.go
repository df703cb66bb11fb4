package config

// mirrorConfig describes an optional minio bucket receiving a copy of every delivered file.
type mirrorConfig struct {
	Enable          bool   `toml:"enable" mapstructure:"enable"`
	Endpoint        string `toml:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `toml:"access_key_id" mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key" mapstructure:"secret_access_key" json:"secret_access_key"`
	BucketName      string `toml:"bucket_name" mapstructure:"bucket_name" json:"bucket_name"`
	UseSSL          bool   `toml:"use_ssl" mapstructure:"use_ssl" json:"use_ssl"`
	BasePath        string `toml:"base_path" mapstructure:"base_path" json:"base_path"`
}
