// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "messiah.config"

const (
	DefaultShutdownTimeout  = "30s"
	DefaultFreezeDuration   = "168h"
	DefaultVotingPeriod     = "168h"
	DefaultApiPort          = 8080
	DefaultMetricsPort      = 12799
	DefaultPageSize         = 10
	DefaultClaimAmount      = 100
	DefaultTreasury         = 1_000_000_000
	DefaultBadgerGcInterval = "5m"
)

const envPrefix = "messiah"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath    string `yaml:"databasePath"    split_words:"true"`
	BindAddr        string `yaml:"bindAddr"        split_words:"true"`
	FreezeDuration  string `yaml:"freezeDuration"  split_words:"true"`
	VotingPeriod    string `yaml:"votingPeriod"    split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	ApiPort         uint   `yaml:"apiPort"         split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"     split_words:"true"`
	PageSize        int    `yaml:"pageSize"        split_words:"true"`
	ClaimAmount     uint64 `yaml:"claimAmount"     split_words:"true"`
	Treasury        uint64 `yaml:"treasury"`
	Tracing         bool   `yaml:"tracing"`
	TracingStdout   bool   `yaml:"tracingStdout"   split_words:"true"`

	// Journal store sizing in bytes. Zero keeps the store default
	BadgerBlockCacheSize   int64 `yaml:"badgerBlockCacheSize"   split_words:"true"`
	BadgerIndexCacheSize   int64 `yaml:"badgerIndexCacheSize"   split_words:"true"`
	BadgerValueLogFileSize int64 `yaml:"badgerValueLogFileSize" split_words:"true"`
	BadgerMemTableSize     int64 `yaml:"badgerMemTableSize"     split_words:"true"`
	BadgerValueThreshold   int64 `yaml:"badgerValueThreshold"   split_words:"true"`

	// BadgerGcInterval of 0s disables journal value log GC
	BadgerGcInterval string `yaml:"badgerGcInterval" split_words:"true"`
}

// Durations holds the parsed duration settings
type Durations struct {
	FreezeDuration  time.Duration
	VotingPeriod    time.Duration
	ShutdownTimeout time.Duration

	// BadgerGcInterval is zero when GC is disabled
	BadgerGcInterval time.Duration
}

// ParseDurations parses and validates the duration settings
func (c *Config) ParseDurations() (Durations, error) {
	var ret Durations
	var err error
	ret.FreezeDuration, err = parsePositiveDuration(
		"freezeDuration",
		c.FreezeDuration,
		DefaultFreezeDuration,
	)
	if err != nil {
		return ret, err
	}
	ret.VotingPeriod, err = parsePositiveDuration(
		"votingPeriod",
		c.VotingPeriod,
		DefaultVotingPeriod,
	)
	if err != nil {
		return ret, err
	}
	ret.ShutdownTimeout, err = parsePositiveDuration(
		"shutdownTimeout",
		c.ShutdownTimeout,
		DefaultShutdownTimeout,
	)
	if err != nil {
		return ret, err
	}
	gcInterval := c.BadgerGcInterval
	if gcInterval == "" {
		gcInterval = DefaultBadgerGcInterval
	}
	ret.BadgerGcInterval, err = time.ParseDuration(gcInterval)
	if err != nil {
		return ret, fmt.Errorf("invalid badgerGcInterval: %w", err)
	}
	if ret.BadgerGcInterval < 0 {
		return ret, fmt.Errorf(
			"invalid badgerGcInterval: %q must not be negative",
			gcInterval,
		)
	}
	return ret, nil
}

func parsePositiveDuration(name, value, def string) (time.Duration, error) {
	if value == "" {
		value = def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q must be positive", name, value)
	}
	return d, nil
}

func (c *Config) validate() error {
	if _, err := c.ParseDurations(); err != nil {
		return err
	}
	if c.ApiPort == 0 || c.ApiPort > 65535 {
		return fmt.Errorf("invalid apiPort: %d", c.ApiPort)
	}
	if c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metricsPort: %d", c.MetricsPort)
	}
	if c.MetricsPort == c.ApiPort {
		return errors.New("apiPort and metricsPort must differ")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid pageSize: %d", c.PageSize)
	}
	if c.ClaimAmount == 0 {
		return errors.New("claimAmount must be positive")
	}
	for name, size := range map[string]int64{
		"badgerBlockCacheSize":   c.BadgerBlockCacheSize,
		"badgerIndexCacheSize":   c.BadgerIndexCacheSize,
		"badgerValueLogFileSize": c.BadgerValueLogFileSize,
		"badgerMemTableSize":     c.BadgerMemTableSize,
		"badgerValueThreshold":   c.BadgerValueThreshold,
	} {
		if size < 0 {
			return fmt.Errorf("invalid %s: %d", name, size)
		}
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:     ".messiah",
		BindAddr:         "0.0.0.0",
		FreezeDuration:   DefaultFreezeDuration,
		VotingPeriod:     DefaultVotingPeriod,
		ShutdownTimeout:  DefaultShutdownTimeout,
		ApiPort:          DefaultApiPort,
		MetricsPort:      DefaultMetricsPort,
		PageSize:         DefaultPageSize,
		ClaimAmount:      DefaultClaimAmount,
		Treasury:         DefaultTreasury,
		BadgerGcInterval: DefaultBadgerGcInterval,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.messiah/messiah.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".messiah", "messiah.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/messiah/messiah.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/messiah/messiah.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process(envPrefix, globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
