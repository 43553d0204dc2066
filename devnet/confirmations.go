package devnet

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"
)

// WaitMined polls for the receipt of tx until it is available or ctx is done.
func (rt *Runtime) WaitMined(ctx context.Context, tx ethcommon.Hash) (*types.Receipt, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(rt.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := rt.client.TransactionReceipt(ctx, tx)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, rpcError("eth_getTransactionReceipt", err)
		}

		logger.WithField("tx", tx.Hex()).Trace("transaction not yet mined")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForConfirmations blocks until the head is at least confirmations blocks
// above the block that included tx. The wait is bounded by the configured
// confirmation timeout.
func (rt *Runtime) WaitForConfirmations(ctx context.Context, tx ethcommon.Hash, confirmations uint64) (*types.Receipt, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}

	timeout := rt.cfg.ConfirmationTimeout
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := rt.waitConfirmed(waitCtx, tx, confirmations)
	if err != nil {
		// only our own deadline turns into a confirmation timeout
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrConfirmationsNotReached(tx, confirmations, timeout)
		}
		return nil, err
	}

	return receipt, nil
}

func (rt *Runtime) waitConfirmed(ctx context.Context, tx ethcommon.Hash, confirmations uint64) (*types.Receipt, error) {
	receipt, err := rt.WaitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	target := receipt.BlockNumber.Uint64() + confirmations

	ticker := time.NewTicker(rt.cfg.PollInterval)
	defer ticker.Stop()

	for {
		head, err := rt.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		if head >= target {
			logger.WithFields(logger.Fields{
				"tx":            tx.Hex(),
				"block":         receipt.BlockNumber,
				"head":          head,
				"confirmations": confirmations,
			}).Debug("transaction confirmed")
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
