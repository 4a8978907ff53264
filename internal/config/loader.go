package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".pybundle"

// configType is the config file format.
const configType = "toml"

// envPrefix is the environment variable prefix.
const envPrefix = "PYBUNDLE"

// Load reads configuration from defaults, the config file, environment
// variables and the given flags (keyed by config key). If path is empty the
// file is searched in the working directory and $HOME; a missing file is
// not an error. An explicit path must exist.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in defaults, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}
