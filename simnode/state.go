package simnode

import (
	"math/big"

	"github.com/TEENet-io/devchain/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// chainState is everything hardhat_reset throws away.
type chainState struct {
	headers      []*types.Header
	balances     map[ethcommon.Address]*big.Int
	nonces       map[ethcommon.Address]uint64
	code         map[ethcommon.Address][]byte
	receipts     map[ethcommon.Hash]*types.Receipt
	impersonated map[ethcommon.Address]bool

	// seconds added to the timestamp of the next mined block
	timeOffset uint64
}

func newChainState(genesis *types.Header, balances map[ethcommon.Address]*big.Int) *chainState {
	st := &chainState{
		headers:      []*types.Header{genesis},
		balances:     make(map[ethcommon.Address]*big.Int, len(balances)),
		nonces:       make(map[ethcommon.Address]uint64),
		code:         make(map[ethcommon.Address][]byte),
		receipts:     make(map[ethcommon.Hash]*types.Receipt),
		impersonated: make(map[ethcommon.Address]bool),
	}
	for addr, bal := range balances {
		st.balances[addr] = common.BigIntClone(bal)
	}
	return st
}

func (st *chainState) head() *types.Header {
	return st.headers[len(st.headers)-1]
}

func (st *chainState) headerByNumber(number uint64) *types.Header {
	first := st.headers[0].Number.Uint64()
	if number < first || number > st.head().Number.Uint64() {
		return nil
	}
	return st.headers[number-first]
}

func (st *chainState) balance(addr ethcommon.Address) *big.Int {
	if bal, ok := st.balances[addr]; ok {
		return common.BigIntClone(bal)
	}
	return new(big.Int)
}

// mine seals a new block on top of the head. The timestamp advances by the
// pending time offset, or by one second when no offset is pending.
func (st *chainState) mine(timestamp *uint64) *types.Header {
	parent := st.head()

	step := st.timeOffset
	if step == 0 {
		step = 1
	}
	ts := parent.Time + step
	if timestamp != nil {
		ts = *timestamp
	}
	st.timeOffset = 0

	header := &types.Header{
		ParentHash:  parent.Hash(),
		UncleHash:   types.EmptyUncleHash,
		Coinbase:    ethcommon.Address{},
		Root:        types.EmptyRootHash,
		TxHash:      types.EmptyTxsHash,
		ReceiptHash: types.EmptyReceiptsHash,
		Difficulty:  new(big.Int),
		Number:      new(big.Int).Add(parent.Number, ethcommon.Big1),
		GasLimit:    parent.GasLimit,
		Time:        ts,
		Extra:       []byte{},
	}
	st.headers = append(st.headers, header)

	return header
}
