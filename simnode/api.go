package simnode

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/TEENet-io/devchain/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	transferGas = 21_000
	creationGas = 53_000
)

// TransactionArgs are the eth_sendTransaction params the node understands.
type TransactionArgs struct {
	From     ethcommon.Address  `json:"from"`
	To       *ethcommon.Address `json:"to"`
	Value    *hexutil.Big    `json:"value"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
}

func (args *TransactionArgs) data() []byte {
	if args.Input != nil {
		return ethcommon.CopyBytes(*args.Input)
	}
	if args.Data != nil {
		return ethcommon.CopyBytes(*args.Data)
	}
	return nil
}

type ForkingParams struct {
	JSONRPCURL  string  `json:"jsonRpcUrl"`
	BlockNumber *uint64 `json:"blockNumber"`
}

type ResetParams struct {
	Forking *ForkingParams `json:"forking"`
}

// Quantity accepts both JSON numbers and hex strings, as hardhat does for
// evm_increaseTime and evm_mine.
type Quantity uint64

func (q *Quantity) UnmarshalJSON(input []byte) error {
	if len(input) > 0 && input[0] == '"' {
		var s string
		if err := json.Unmarshal(input, &s); err != nil {
			return err
		}
		v, err := hexutil.DecodeUint64(s)
		if err != nil {
			return err
		}
		*q = Quantity(v)
		return nil
	}

	var v uint64
	if err := json.Unmarshal(input, &v); err != nil {
		return err
	}
	*q = Quantity(v)
	return nil
}

type ethAPI struct {
	n *Node
}

func (api *ethAPI) ChainId() *hexutil.Big {
	api.n.lock("eth_chainId")
	defer api.n.mu.Unlock()
	return (*hexutil.Big)(common.BigIntClone(api.n.chainID))
}

func (api *ethAPI) Accounts() []ethcommon.Address {
	api.n.lock("eth_accounts")
	defer api.n.mu.Unlock()
	return api.n.Accounts()
}

func (api *ethAPI) BlockNumber() hexutil.Uint64 {
	api.n.lock("eth_blockNumber")
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.st.head().Number.Uint64())
}

func (api *ethAPI) GetBlockByNumber(number rpc.BlockNumber, fullTx bool) (*types.Header, error) {
	api.n.lock("eth_getBlockByNumber")
	defer api.n.mu.Unlock()

	if number < 0 {
		return types.CopyHeader(api.n.st.head()), nil
	}
	header := api.n.st.headerByNumber(uint64(number))
	if header == nil {
		return nil, nil
	}
	return types.CopyHeader(header), nil
}

// GetBalance only knows the latest state; the block argument is ignored.
func (api *ethAPI) GetBalance(addr ethcommon.Address, block rpc.BlockNumberOrHash) *hexutil.Big {
	api.n.lock("eth_getBalance")
	defer api.n.mu.Unlock()
	return (*hexutil.Big)(api.n.st.balance(addr))
}

func (api *ethAPI) GetCode(addr ethcommon.Address, block rpc.BlockNumberOrHash) hexutil.Bytes {
	api.n.lock("eth_getCode")
	defer api.n.mu.Unlock()
	return ethcommon.CopyBytes(api.n.st.code[addr])
}

func (api *ethAPI) GetTransactionReceipt(hash ethcommon.Hash) *types.Receipt {
	api.n.lock("eth_getTransactionReceipt")
	defer api.n.mu.Unlock()
	return api.n.st.receipts[hash]
}

// SendTransaction executes a value transfer or records a contract creation
// and mines it into a block of its own.
func (api *ethAPI) SendTransaction(args TransactionArgs) (ethcommon.Hash, error) {
	n := api.n
	n.lock("eth_sendTransaction")
	defer n.mu.Unlock()

	st := n.st
	from := args.From
	if !n.isManaged(from) && !st.impersonated[from] {
		return ethcommon.Hash{}, fmt.Errorf("%w: %s", ErrUnknownAccount, from.Hex())
	}

	value := new(big.Int)
	if args.Value != nil {
		value = args.Value.ToInt()
	}
	balance := st.balance(from)
	if balance.Cmp(value) < 0 {
		return ethcommon.Hash{}, fmt.Errorf("%w: have %s want %s", ErrInsufficientFunds, balance, value)
	}

	nonce := st.nonces[from]
	st.nonces[from] = nonce + 1
	hash := crypto.Keccak256Hash(from.Bytes(), new(big.Int).SetUint64(nonce).Bytes(), n.chainID.Bytes())

	st.balances[from] = new(big.Int).Sub(balance, value)

	var (
		contract ethcommon.Address
		gasUsed  uint64 = transferGas
	)
	if args.To != nil {
		st.balances[*args.To] = new(big.Int).Add(st.balance(*args.To), value)
	} else {
		contract = crypto.CreateAddress(from, nonce)
		st.code[contract] = args.data()
		st.balances[contract] = new(big.Int).Add(st.balance(contract), value)
		gasUsed = creationGas
	}

	header := st.mine(nil)
	st.receipts[hash] = &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: gasUsed,
		Logs:              []*types.Log{},
		TxHash:            hash,
		ContractAddress:   contract,
		GasUsed:           gasUsed,
		EffectiveGasPrice: new(big.Int),
		BlockHash:         header.Hash(),
		BlockNumber:       common.BigIntClone(header.Number),
		TransactionIndex:  0,
	}

	return hash, nil
}

type evmAPI struct {
	n *Node
}

// IncreaseTime shifts the timestamp of the next mined block and returns the
// pending offset in seconds.
func (api *evmAPI) IncreaseTime(seconds Quantity) string {
	api.n.lock("evm_increaseTime")
	defer api.n.mu.Unlock()

	api.n.st.timeOffset += uint64(seconds)
	return strconv.FormatUint(api.n.st.timeOffset, 10)
}

func (api *evmAPI) Mine(timestamp *Quantity) string {
	api.n.lock("evm_mine")
	defer api.n.mu.Unlock()

	var ts *uint64
	if timestamp != nil {
		v := uint64(*timestamp)
		ts = &v
	}
	api.n.st.mine(ts)
	return "0x0"
}

type hardhatAPI struct {
	n *Node
}

func (api *hardhatAPI) ImpersonateAccount(addr ethcommon.Address) bool {
	api.n.lock("hardhat_impersonateAccount")
	defer api.n.mu.Unlock()

	api.n.st.impersonated[addr] = true
	return true
}

func (api *hardhatAPI) StopImpersonatingAccount(addr ethcommon.Address) bool {
	api.n.lock("hardhat_stopImpersonatingAccount")
	defer api.n.mu.Unlock()

	wasImpersonated := api.n.st.impersonated[addr]
	delete(api.n.st.impersonated, addr)
	return wasImpersonated
}

func (api *hardhatAPI) SetBalance(addr ethcommon.Address, balance hexutil.Big) bool {
	api.n.lock("hardhat_setBalance")
	defer api.n.mu.Unlock()

	api.n.st.balances[addr] = common.BigIntClone(balance.ToInt())
	return true
}

func (api *hardhatAPI) Reset(params *ResetParams) (bool, error) {
	api.n.lock("hardhat_reset")
	defer api.n.mu.Unlock()

	var blockNumber *uint64
	if params != nil && params.Forking != nil {
		api.n.forkURL = params.Forking.JSONRPCURL
		blockNumber = params.Forking.BlockNumber
	}
	if err := api.n.reset(blockNumber); err != nil {
		return false, err
	}
	return true, nil
}
