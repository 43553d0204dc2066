package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TEENet-io/devchain/devnet"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ENV_PREFIX = "DEVNET"

	// DEVNET_CONFIG points at the configuration file when --config is not given
	ENV_CONFIG_FILE_PATH = ENV_PREFIX + "_CONFIG"
)

var ErrConfigFileNotFound = errors.New("configuration file not found")

// NewViper returns a viper instance preloaded with the devnet defaults and
// reading DEVNET_* environment variables. Nested keys map to underscores:
// forking.block-number is DEVNET_FORKING_BLOCK_NUMBER.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := devnet.DefaultConfig()
	v.SetDefault("rpc-url", def.RPCURL)
	v.SetDefault("artifacts-dir", def.ArtifactsDir)
	v.SetDefault("forking.url", def.Forking.URL)
	v.SetDefault("forking.block-number", def.Forking.BlockNumber)
	v.SetDefault("seconds-per-block", def.SecondsPerBlock)
	v.SetDefault("poll-interval", def.PollInterval)
	v.SetDefault("confirmation-timeout", def.ConfirmationTimeout)
	v.SetDefault("tracer", def.Tracer)

	return v
}

// LoadConfig reads file (or the file named by DEVNET_CONFIG when file is
// empty) into v and decodes the result. A missing file is an error only when
// one was asked for.
func LoadConfig(v *viper.Viper, file string) (*devnet.Config, error) {
	if file == "" {
		file = v.GetString("config")
	}

	if file != "" {
		if !FileExists(file) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, file)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading configuration file %s: %w", file, err)
		}
		logger.WithField("file", v.ConfigFileUsed()).Debug("configuration file loaded")
	}

	cfg := &devnet.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.WithFields(logger.Fields{
		"rpcURL":    cfg.RPCURL,
		"artifacts": cfg.ArtifactsDir,
		"forking":   cfg.Forking.URL,
	}).Debug("configuration loaded")

	return cfg, nil
}
