// Package devnet drives a Hardhat-style development chain: account
// impersonation, balance overrides, fork resets, time travel and contract
// deployment from hardhat build artifacts.
package devnet

import (
	"context"
	"math/big"
	"time"

	"github.com/TEENet-io/devchain/artifacts"
	"github.com/TEENet-io/devchain/tracer"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	logger "github.com/sirupsen/logrus"
)

// Runtime holds the handles every helper works with. It is created once per
// session and passed around by reference.
type Runtime struct {
	cfg Config

	provider Provider
	client   EthClient
	store    *artifacts.Store
	tags     *tracer.NameTags

	// set by New, released by Close
	rpcClient *rpc.Client

	now func() time.Time
}

// New dials the node at cfg.RPCURL and checks that it answers eth_chainId.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RPCURL == "" {
		return nil, ErrMissingRPCURL
	}

	c, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, ErrChainUnreachable(cfg.RPCURL, err)
	}
	client := ethclient.NewClient(c)

	chainID, err := client.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, ErrChainUnreachable(cfg.RPCURL, err)
	}

	rt := NewWithBackend(cfg, c, client)
	rt.rpcClient = c

	logger.WithFields(logger.Fields{
		"url":     cfg.RPCURL,
		"chainID": chainID,
		"forking": cfg.Forking.URL,
	}).Debug("connected to development node")

	return rt, nil
}

// NewWithBackend builds a runtime over handles owned by the caller. Close
// does not release them.
func NewWithBackend(cfg *Config, provider Provider, client EthClient) *Runtime {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rt := &Runtime{
		cfg:      *cfg,
		provider: provider,
		client:   client,
		store:    artifacts.NewStore(cfg.ArtifactsDir),
		now:      time.Now,
	}
	if rt.cfg.PollInterval <= 0 {
		rt.cfg.PollInterval = DefaultPollInterval
	}
	if rt.cfg.ConfirmationTimeout <= 0 {
		rt.cfg.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if cfg.Tracer {
		rt.tags = tracer.NewNameTags()
	}

	return rt
}

func (rt *Runtime) Close() {
	if rt == nil || rt.rpcClient == nil {
		return
	}
	rt.rpcClient.Close()
	rt.rpcClient = nil
}

func (rt *Runtime) Config() Config {
	return rt.cfg
}

func (rt *Runtime) Provider() Provider {
	return rt.provider
}

func (rt *Runtime) Client() EthClient {
	return rt.client
}

func (rt *Runtime) Artifacts() *artifacts.Store {
	return rt.store
}

// NameTags returns the tracer registry, or nil when tracing is disabled.
func (rt *Runtime) NameTags() *tracer.NameTags {
	return rt.tags
}

func (rt *Runtime) ChainID(ctx context.Context) (*big.Int, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	id, err := rt.client.ChainID(ctx)
	if err != nil {
		return nil, rpcError("eth_chainId", err)
	}
	return id, nil
}

func (rt *Runtime) check() error {
	if rt == nil || rt.provider == nil {
		return ErrNoRuntime
	}
	return nil
}

// checkClient is check for helpers that also need the typed client.
func (rt *Runtime) checkClient() error {
	if err := rt.check(); err != nil {
		return err
	}
	if rt.client == nil {
		return ErrNoRuntime
	}
	return nil
}

// label is the tracer's short label for addr, or the bare hex when tracing
// is disabled.
func (rt *Runtime) label(addr ethcommon.Address) string {
	if rt == nil || rt.tags == nil {
		return addr.Hex()
	}
	return rt.tags.ShortLabel(addr)
}

func (rt *Runtime) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if err := rt.provider.CallContext(ctx, result, method, args...); err != nil {
		return rpcError(method, err)
	}
	return nil
}
