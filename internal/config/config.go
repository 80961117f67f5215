package config

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "DISKLABEL"
	FileName  = "disklabeltool"
)

// Config holds the tool settings.
type Config struct {
	SectorSize    uint64 `mapstructure:"sector_size"`
	Alignment     uint64 `mapstructure:"alignment"`
	MaxImageBytes int64  `mapstructure:"max_image_bytes"`
	LogLevel      string `mapstructure:"log_level"`
	Output        string `mapstructure:"output"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sector_size", 512)
	v.SetDefault("alignment", 8)
	v.SetDefault("max_image_bytes", 64<<20)
	v.SetDefault("log_level", "info")
	v.SetDefault("output", "table")
}

// Load reads configuration into v from path, or from the search path
// when path is empty. A missing config file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.disklabeltool")
		v.AddConfigPath("/etc/disklabeltool")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "config: read")
		}
		log.Debugf("config: no config file, using defaults")
	} else {
		log.Debugf("config: loaded %s", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the tool cannot work with.
func (c *Config) Validate() error {
	if c.SectorSize == 0 || c.SectorSize%512 != 0 {
		return errors.Errorf("config: sector_size %d is not a multiple of 512", c.SectorSize)
	}
	if c.Alignment == 0 {
		return errors.New("config: alignment must be positive")
	}
	if c.MaxImageBytes <= 0 {
		return errors.New("config: max_image_bytes must be positive")
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return errors.Errorf("config: unknown output format %q", c.Output)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config: log_level")
	}
	return nil
}
