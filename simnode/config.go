package simnode

import (
	"math/big"

	"github.com/TEENet-io/devchain/common"
)

const (
	DefaultChainID   = 31337
	DefaultAccounts  = 10
	DefaultTimestamp = 1700000000
)

type Config struct {
	// ChainID reported by eth_chainId
	ChainID *big.Int

	// Accounts is the number of node-managed accounts returned by eth_accounts
	Accounts int

	// Balance of every node-managed account at the fork block
	Balance *big.Int

	// ForkBlockNumber is the number of the first block of the chain. hardhat_reset
	// only accepts this block (or no block at all).
	ForkBlockNumber uint64

	// ForkTimestamp is the timestamp of the first block
	ForkTimestamp uint64
}

func DefaultConfig() *Config {
	return &Config{
		ChainID:         big.NewInt(DefaultChainID),
		Accounts:        DefaultAccounts,
		Balance:         common.EtherToWei(10000),
		ForkBlockNumber: 0,
		ForkTimestamp:   DefaultTimestamp,
	}
}
