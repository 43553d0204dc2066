package devnet

//go:generate mockgen -source provider.go -destination provider_mock.go -package devnet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Provider is the raw JSON-RPC passthrough to the development node. It is
// satisfied by *rpc.Client.
type Provider interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// EthClient is the typed chain client. It is satisfied by *ethclient.Client
// and by the client of go-ethereum's simulated backend.
type EthClient interface {
	bind.ContractBackend
	bind.DeployBackend

	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}
