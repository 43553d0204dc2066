package devnet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/TEENet-io/devchain/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

// forkingParams is the "forking" object of hardhat_reset.
type forkingParams struct {
	JSONRPCURL  string  `json:"jsonRpcUrl"`
	BlockNumber *uint64 `json:"blockNumber,omitempty"`
}

type resetParams struct {
	Forking *forkingParams `json:"forking,omitempty"`
}

// Impersonate lets the node accept unsigned transactions from addrs. The
// node takes one address per request, so addrs are sent in order and the
// first failure stops the rest.
func (rt *Runtime) Impersonate(ctx context.Context, addrs ...ethcommon.Address) error {
	return rt.sendAddresses(ctx, "hardhat_impersonateAccount", addrs)
}

func (rt *Runtime) StopImpersonating(ctx context.Context, addrs ...ethcommon.Address) error {
	return rt.sendAddresses(ctx, "hardhat_stopImpersonatingAccount", addrs)
}

func (rt *Runtime) sendAddresses(ctx context.Context, method string, addrs []ethcommon.Address) error {
	if err := rt.check(); err != nil {
		return err
	}

	for _, addr := range addrs {
		var ok bool
		if err := rt.call(ctx, &ok, method, addr); err != nil {
			return fmt.Errorf("%s: %w", addr.Hex(), err)
		}

		logger.WithFields(logger.Fields{
			"method":  method,
			"address": rt.label(addr),
		}).Debug("impersonation updated")
	}

	return nil
}

// SetBalance overwrites the native balance of addr. balance may be a decimal
// or 0x-prefixed string, any Go integer, *big.Int or *uint256.Int.
func (rt *Runtime) SetBalance(ctx context.Context, addr ethcommon.Address, balance any) error {
	if err := rt.check(); err != nil {
		return err
	}

	quantity, err := common.ToQuantity(balance)
	if err != nil {
		return err
	}

	var ok bool
	if err := rt.call(ctx, &ok, "hardhat_setBalance", addr, quantity); err != nil {
		return err
	}

	logger.WithFields(logger.Fields{
		"address": addr,
		"balance": quantity,
	}).Debug("balance set")

	return nil
}

// ResetFork discards all local state and forks again from the configured
// upstream at the configured block.
func (rt *Runtime) ResetFork(ctx context.Context) error {
	if err := rt.check(); err != nil {
		return err
	}
	return rt.reset(ctx, rt.cfg.Forking.BlockNumber)
}

// ResetForkTo is ResetFork pinned to blockNumber instead of the configured
// block. Zero means the upstream's latest block.
func (rt *Runtime) ResetForkTo(ctx context.Context, blockNumber uint64) error {
	if err := rt.check(); err != nil {
		return err
	}
	return rt.reset(ctx, blockNumber)
}

func (rt *Runtime) reset(ctx context.Context, blockNumber uint64) error {
	var (
		ok     bool
		params []interface{}
	)
	if url := rt.cfg.Forking.URL; url != "" {
		forking := &forkingParams{JSONRPCURL: url}
		if blockNumber > 0 {
			forking.BlockNumber = &blockNumber
		}
		params = append(params, resetParams{Forking: forking})
	}

	if err := rt.call(ctx, &ok, "hardhat_reset", params...); err != nil {
		return err
	}

	logger.WithFields(logger.Fields{
		"url":         rt.cfg.Forking.URL,
		"blockNumber": blockNumber,
	}).Debug("chain reset")

	return nil
}

func (rt *Runtime) ForkingURL() string {
	if rt == nil {
		return ""
	}
	return rt.cfg.Forking.URL
}

func (rt *Runtime) ForkingBlockNumber() uint64 {
	if rt == nil {
		return 0
	}
	return rt.cfg.Forking.BlockNumber
}

// Accounts returns the node-managed accounts.
func (rt *Runtime) Accounts(ctx context.Context) ([]ethcommon.Address, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}

	var accounts []ethcommon.Address
	if err := rt.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (rt *Runtime) Account(ctx context.Context, i int) (ethcommon.Address, error) {
	accounts, err := rt.Accounts(ctx)
	if err != nil {
		return ethcommon.Address{}, err
	}
	if i < 0 || i >= len(accounts) {
		return ethcommon.Address{}, ErrAccountIndexOutOfRange(i, len(accounts))
	}
	return accounts[i], nil
}

// Balance reads the latest balance of addr.
func (rt *Runtime) Balance(ctx context.Context, addr ethcommon.Address) (*big.Int, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}
	balance, err := rt.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, rpcError("eth_getBalance", err)
	}
	return balance, nil
}
