// Package config loads the process-level configuration for dialogctl and
// any other operational entry point: which block-store backend to use,
// cache sizing, known remote sites, and default branch/subject identity.
// There are no implicit defaults for remote endpoint, region, bucket, or
// credentials, per spec.md §6: Load takes a site's fields only from the
// configuration it reads and fills in nothing else, and this package does
// not check that they are set.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/dialog-db/dialog-db-sub004/pkg/utils"
)

// Version is the semantic version of this configuration package's schema.
const Version = "v0.1.0"

// Config is the unified configuration for a dialogctl process.
type Config struct {
	Backend struct {
		// Kind is "memory" or "local"; "remote" backends are configured
		// per-site below instead, since a remote backend always needs
		// its own endpoint/region/bucket/credentials.
		Kind string `mapstructure:"kind" json:"kind"`
		Path string `mapstructure:"path" json:"path"`
	} `mapstructure:"backend" json:"backend"`

	Cache struct {
		NodeCacheEntries int `mapstructure:"node_cache_entries" json:"node_cache_entries"`
		DeltaFlushBytes  int `mapstructure:"delta_flush_bytes" json:"delta_flush_bytes"`
	} `mapstructure:"cache" json:"cache"`

	Sites []SiteConfig `mapstructure:"sites" json:"sites"`

	Branch struct {
		DefaultSubject string `mapstructure:"default_subject" json:"default_subject"`
		DefaultID      string `mapstructure:"default_id" json:"default_id"`
	} `mapstructure:"branch" json:"branch"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// SiteConfig is one entry of the `sites` configuration list: a symbolic
// name plus the credentials needed to reach it, per spec.md §3 (Site /
// RemoteState) and §6 (Environment).
type SiteConfig struct {
	Name     string `mapstructure:"name" json:"name"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	Region   string `mapstructure:"region" json:"region"`
	Bucket   string `mapstructure:"bucket" json:"bucket"`

	// CredentialsKind is "direct" (SigV4 access key/secret) or "ucan"
	// (delegation chain mediated through a remote access service).
	CredentialsKind string `mapstructure:"credentials_kind" json:"credentials_kind"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"secret_access_key"`
	UCANDelegation  string `mapstructure:"ucan_delegation" json:"ucan_delegation"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment-specific
// overrides. The resulting configuration is stored in AppConfig and
// returned.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the DIALOG_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("DIALOG_ENV", ""))
}

// Site looks up a configured site by name.
func (c *Config) Site(name string) (SiteConfig, bool) {
	for _, s := range c.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return SiteConfig{}, false
}
