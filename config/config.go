// Copyright 2023 The Stamp Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const defaultConfigName = ".stampproof.yaml"

// Config holds the settings the CLI and calendar clients read. The core proof
// engine takes no configuration.
type Config struct {
	// Calendars are the base URLs of calendar servers consulted when stamping.
	Calendars []string `mapstructure:"calendars"`
	// Algorithms are the hash algorithms used to digest documents.
	Algorithms []string `mapstructure:"algorithms"`
	// CacheTTL bounds how long calendar responses are reused.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// LogLevel adjusts the default logger's verbosity.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		Algorithms: []string{"sha256", "sha512"},
		CacheTTL:   time.Hour,
		LogLevel:   "warn",
	}
}

// Load reads configuration from path, or from $HOME/.stampproof.yaml when path is
// empty. Environment variables prefixed with STAMPPROOF_ override file values. A
// missing config file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetDefault("algorithms", cfg.Algorithms)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetEnvPrefix("STAMPPROOF")
	v.AutomaticEnv()

	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return cfg, fmt.Errorf("failed to locate home directory: %w", err)
		}

		path = filepath.Join(home, defaultConfigName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file %v: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %v: %w", path, err)
	}

	return cfg, nil
}
