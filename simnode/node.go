// Package simnode is an in-memory stand-in for a Hardhat network node. It
// serves the JSON-RPC subset the devnet helpers rely on (account control,
// time travel, mining, value transfers and contract creation bookkeeping)
// without an EVM: creation transactions store their init code as the account
// code, and calls are not executed.
package simnode

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/TEENet-io/devchain/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	logger "github.com/sirupsen/logrus"
)

const blockGasLimit = 30_000_000

var (
	ErrUnknownAccount    = errors.New("unknown account")
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
	ErrUnknownForkBlock  = errors.New("fork block not available")
)

type Node struct {
	mu sync.Mutex

	chainID  *big.Int
	accounts []ethcommon.Address
	genesis  *types.Header
	alloc    map[ethcommon.Address]*big.Int
	st       *chainState

	// jsonRpcUrl of the last hardhat_reset with forking params
	forkURL string
	calls   []string

	server *rpc.Server
}

func New(cfg *Config) (*Node, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	chainID := cfg.ChainID
	if chainID == nil {
		chainID = big.NewInt(DefaultChainID)
	}
	balance := cfg.Balance
	if balance == nil {
		balance = new(big.Int)
	}

	accounts := make([]ethcommon.Address, cfg.Accounts)
	alloc := make(map[ethcommon.Address]*big.Int, cfg.Accounts)
	for i := range accounts {
		accounts[i] = common.RandEthAddress()
		alloc[accounts[i]] = common.BigIntClone(balance)
	}

	genesis := &types.Header{
		UncleHash:   types.EmptyUncleHash,
		Root:        types.EmptyRootHash,
		TxHash:      types.EmptyTxsHash,
		ReceiptHash: types.EmptyReceiptsHash,
		Difficulty:  new(big.Int),
		Number:      new(big.Int).SetUint64(cfg.ForkBlockNumber),
		GasLimit:    blockGasLimit,
		Time:        cfg.ForkTimestamp,
		Extra:       []byte{},
	}

	n := &Node{
		chainID:  common.BigIntClone(chainID),
		accounts: accounts,
		genesis:  genesis,
		alloc:    alloc,
		st:       newChainState(genesis, alloc),
		server:   rpc.NewServer(),
	}

	apis := map[string]any{
		"eth":     &ethAPI{n},
		"evm":     &evmAPI{n},
		"hardhat": &hardhatAPI{n},
	}
	for namespace, api := range apis {
		if err := n.server.RegisterName(namespace, api); err != nil {
			return nil, fmt.Errorf("failed to register %s api: %w", namespace, err)
		}
	}

	return n, nil
}

// Client returns an in-process RPC client connected to the node.
func (n *Node) Client() *rpc.Client {
	return rpc.DialInProc(n.server)
}

// Server exposes the node's RPC server, e.g. to serve it over HTTP in tests.
func (n *Node) Server() *rpc.Server {
	return n.server
}

func (n *Node) Close() {
	n.server.Stop()
}

func (n *Node) ChainID() *big.Int {
	return common.BigIntClone(n.chainID)
}

func (n *Node) Accounts() []ethcommon.Address {
	out := make([]ethcommon.Address, len(n.accounts))
	copy(out, n.accounts)
	return out
}

func (n *Node) Head() *types.Header {
	n.mu.Lock()
	defer n.mu.Unlock()
	return types.CopyHeader(n.st.head())
}

func (n *Node) Balance(addr ethcommon.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.st.balance(addr)
}

func (n *Node) Code(addr ethcommon.Address) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return ethcommon.CopyBytes(n.st.code[addr])
}

func (n *Node) IsImpersonated(addr ethcommon.Address) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.st.impersonated[addr]
}

func (n *Node) ForkURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.forkURL
}

// Calls returns the RPC methods served so far, in order.
func (n *Node) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.calls))
	copy(out, n.calls)
	return out
}

// CallCount returns how many times method was served.
func (n *Node) CallCount(method string) int {
	count := 0
	for _, c := range n.Calls() {
		if c == method {
			count++
		}
	}
	return count
}

// lock must be released by the caller
func (n *Node) lock(method string) {
	n.mu.Lock()
	n.calls = append(n.calls, method)
}

func (n *Node) isManaged(addr ethcommon.Address) bool {
	for _, a := range n.accounts {
		if a == addr {
			return true
		}
	}
	return false
}

// reset restores the fork block state. The caller holds the lock.
func (n *Node) reset(blockNumber *uint64) error {
	if blockNumber != nil && *blockNumber != n.genesis.Number.Uint64() {
		return fmt.Errorf("%w: %d (fork block is %d)", ErrUnknownForkBlock, *blockNumber, n.genesis.Number.Uint64())
	}

	n.st = newChainState(n.genesis, n.alloc)
	logger.WithField("block", n.genesis.Number).Debug("simnode reset to fork block")

	return nil
}
