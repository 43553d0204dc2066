package devnet

import (
	"context"
	"fmt"

	"github.com/TEENet-io/devchain/artifacts"
	"github.com/TEENet-io/devchain/common"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"
)

// Contract is a deployed contract bound to the runtime's client.
type Contract struct {
	*bind.BoundContract

	Name    string
	Address ethcommon.Address
	ABI     abi.ABI

	// Opts are the options the contract was deployed with, used as defaults
	// for later calls.
	Opts bind.TransactOpts

	Receipt *types.Receipt
}

// CallOpts derives read-only call options from the default options.
func (c *Contract) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{
		From:    c.Opts.From,
		Context: ctx,
	}
}

// Call invokes a constant method and returns its unpacked outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.BoundContract.Call(c.CallOpts(ctx), &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// transactionArgs are the eth_sendTransaction params of an unsigned
// transaction.
type transactionArgs struct {
	From     ethcommon.Address  `json:"from"`
	To       *ethcommon.Address `json:"to,omitempty"`
	Data     hexutil.Bytes      `json:"data"`
	Value    *hexutil.Big       `json:"value,omitempty"`
	Gas      *hexutil.Uint64    `json:"gas,omitempty"`
	GasPrice *hexutil.Big       `json:"gasPrice,omitempty"`
}

// Deploy creates the contract compiled as artifact name. With opts.Signer set
// the creation transaction is signed locally, otherwise it is sent unsigned
// from opts.From, which must then be a node-managed or impersonated account.
// When confirmations > 0, Deploy waits until that many blocks are built on
// top of the creation block.
func (rt *Runtime) Deploy(ctx context.Context, name string, opts *bind.TransactOpts, confirmations uint64, args ...interface{}) (*Contract, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}
	if opts == nil || opts.From == (ethcommon.Address{}) {
		return nil, ErrMissingFrom
	}

	logger.WithFields(logger.Fields{
		"contract": name,
		"from":     rt.label(opts.From),
	}).Debug("deploying")

	art, err := rt.Artifact(name)
	if err != nil {
		return nil, err
	}
	code, err := art.Code()
	if err != nil {
		return nil, err
	}

	var tx ethcommon.Hash
	if opts.Signer != nil {
		tx, err = rt.sendSigned(ctx, art, code, opts, args...)
	} else {
		tx, err = rt.sendUnsigned(ctx, art, code, opts, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", art.ContractName, err)
	}

	if confirmations > 0 {
		if _, err := rt.WaitForConfirmations(ctx, tx, confirmations); err != nil {
			return nil, err
		}
	}

	receipt, err := rt.WaitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, ErrDeployFailed(art.ContractName, tx)
	}

	address := receipt.ContractAddress
	deployed, err := rt.client.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, rpcError("eth_getCode", err)
	}
	if len(deployed) == 0 {
		return nil, bind.ErrNoCodeAfterDeploy
	}

	logger.WithFields(logger.Fields{
		"contract": art.ContractName,
		"address":  rt.label(address),
		"deployer": rt.label(opts.From),
		"block":    receipt.BlockNumber,
	}).Debug("deployed")
	rt.Tag(address.Hex(), art.ContractName)

	c := &Contract{
		BoundContract: bind.NewBoundContract(address, art.ABI, rt.client, rt.client, rt.client),
		Name:          art.ContractName,
		Address:       address,
		ABI:           art.ABI,
		Opts:          *opts,
		Receipt:       receipt,
	}
	return c, nil
}

func (rt *Runtime) sendSigned(ctx context.Context, art *artifacts.Artifact, code []byte, opts *bind.TransactOpts, args ...interface{}) (ethcommon.Hash, error) {
	auth := *opts
	if auth.Context == nil {
		auth.Context = ctx
	}

	_, tx, _, err := bind.DeployContract(&auth, art.ABI, code, rt.client, args...)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return tx.Hash(), nil
}

func (rt *Runtime) sendUnsigned(ctx context.Context, art *artifacts.Artifact, code []byte, opts *bind.TransactOpts, args ...interface{}) (ethcommon.Hash, error) {
	input, err := art.ABI.Pack("", args...)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	txArgs := transactionArgs{
		From: opts.From,
		Data: append(ethcommon.CopyBytes(code), input...),
	}
	if opts.Value != nil {
		txArgs.Value = (*hexutil.Big)(common.BigIntClone(opts.Value))
	}
	if opts.GasLimit > 0 {
		gas := hexutil.Uint64(opts.GasLimit)
		txArgs.Gas = &gas
	}
	if opts.GasPrice != nil {
		txArgs.GasPrice = (*hexutil.Big)(common.BigIntClone(opts.GasPrice))
	}

	var tx ethcommon.Hash
	if err := rt.call(ctx, &tx, "eth_sendTransaction", txArgs); err != nil {
		return ethcommon.Hash{}, err
	}
	return tx, nil
}

// DeployAs deploys like Deploy and binds the result with an abigen
// constructor such as NewToken.
func DeployAs[T any](
	ctx context.Context,
	rt *Runtime,
	name string,
	opts *bind.TransactOpts,
	confirmations uint64,
	binder func(ethcommon.Address, bind.ContractBackend) (T, error),
	args ...interface{},
) (T, *Contract, error) {
	var zero T

	c, err := rt.Deploy(ctx, name, opts, confirmations, args...)
	if err != nil {
		return zero, nil, err
	}
	bound, err := binder(c.Address, rt.client)
	if err != nil {
		return zero, nil, err
	}
	return bound, c, nil
}
