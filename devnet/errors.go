package devnet

import (
	"errors"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrNoRuntime           = errors.New("devnet runtime not initialized")
	ErrMissingRPCURL       = errors.New("rpc url not configured")
	ErrMissingFrom         = errors.New("transact options have no sender")
	ErrInvalidBlockTime    = errors.New("seconds per block must be positive")
	ErrAccountIndex        = errors.New("account index out of range")
	ErrDeployReverted      = errors.New("deployment transaction reverted")
	ErrConfirmationTimeout = errors.New("timed out waiting for confirmations")
)

func ErrChainUnreachable(url string, err error) error {
	return fmt.Errorf("failed to reach node at %s: %w", url, err)
}

func ErrAccountIndexOutOfRange(index, count int) error {
	return fmt.Errorf("%w: index=%d, accounts=%d", ErrAccountIndex, index, count)
}

func ErrDeployFailed(name string, tx ethcommon.Hash) error {
	return fmt.Errorf("%w: contract=%s, tx=%s", ErrDeployReverted, name, tx.Hex())
}

func ErrConfirmationsNotReached(tx ethcommon.Hash, confirmations uint64, timeout time.Duration) error {
	return fmt.Errorf("%w: tx=%s, confirmations=%d, timeout=%v", ErrConfirmationTimeout, tx.Hex(), confirmations, timeout)
}

// rpcError prefixes err with the RPC method that produced it.
func rpcError(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}
