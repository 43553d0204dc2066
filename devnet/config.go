package devnet

import (
	"errors"
	"time"

	"github.com/TEENet-io/devchain/artifacts"
)

const (
	DefaultRPCURL              = "http://127.0.0.1:8545"
	DefaultSecondsPerBlock     = 12
	DefaultPollInterval        = time.Second
	DefaultConfirmationTimeout = 5 * time.Minute
)

type ForkingConfig struct {
	// URL is the upstream node the development chain forks from. Empty means
	// the chain is not forked.
	URL string `mapstructure:"url"`

	// BlockNumber is the block the fork is pinned to. Zero means latest.
	BlockNumber uint64 `mapstructure:"block-number"`
}

type Config struct {
	// RPCURL is the endpoint of the development node
	RPCURL string `mapstructure:"rpc-url"`

	// ArtifactsDir is the hardhat build output directory
	ArtifactsDir string `mapstructure:"artifacts-dir"`

	Forking ForkingConfig `mapstructure:"forking"`

	// SecondsPerBlock is the block time used by the CLI when none is given
	SecondsPerBlock uint64 `mapstructure:"seconds-per-block"`

	// PollInterval between receipt and confirmation checks
	PollInterval time.Duration `mapstructure:"poll-interval"`

	// ConfirmationTimeout bounds the wait for deployment confirmations
	ConfirmationTimeout time.Duration `mapstructure:"confirmation-timeout"`

	// Tracer enables the address name-tag registry
	Tracer bool `mapstructure:"tracer"`
}

func DefaultConfig() *Config {
	return &Config{
		RPCURL:              DefaultRPCURL,
		ArtifactsDir:        artifacts.DefaultDir,
		SecondsPerBlock:     DefaultSecondsPerBlock,
		PollInterval:        DefaultPollInterval,
		ConfirmationTimeout: DefaultConfirmationTimeout,
		Tracer:              true,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.RPCURL == "" {
		errs = append(errs, ErrMissingRPCURL)
	}
	if c.SecondsPerBlock == 0 {
		errs = append(errs, ErrInvalidBlockTime)
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.ConfirmationTimeout <= 0 {
		errs = append(errs, errors.New("confirmation timeout must be positive"))
	}
	return errors.Join(errs...)
}
