package devnet

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"
)

// MineBlock moves the clock forward by seconds and mines one block.
func (rt *Runtime) MineBlock(ctx context.Context, seconds uint64) (*types.Header, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}

	start, err := rt.Block(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := rt.mine(ctx, seconds); err != nil {
		return nil, err
	}
	end, err := rt.Block(ctx, nil)
	if err != nil {
		return nil, err
	}

	logMined(start, end)
	return end, nil
}

// MineBlocks mines round(seconds/secondsPerBlock) blocks, each secondsPerBlock
// after the previous one. Halves round up. The total time mined is therefore
// only approximately seconds when it is not a multiple of secondsPerBlock.
func (rt *Runtime) MineBlocks(ctx context.Context, seconds, secondsPerBlock uint64) (*types.Header, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}
	if secondsPerBlock == 0 {
		return nil, ErrInvalidBlockTime
	}

	start, err := rt.Block(ctx, nil)
	if err != nil {
		return nil, err
	}

	n := BlocksFor(seconds, secondsPerBlock)
	for i := uint64(0); i < n; i++ {
		if err := rt.mine(ctx, secondsPerBlock); err != nil {
			return nil, err
		}
	}

	end := start
	if n > 0 {
		if end, err = rt.Block(ctx, nil); err != nil {
			return nil, err
		}
	}

	logMined(start, end)
	return end, nil
}

// BlocksFor is the number of blocks MineBlocks mines for the given span.
func BlocksFor(seconds, secondsPerBlock uint64) uint64 {
	if secondsPerBlock == 0 {
		return 0
	}
	return divRound(seconds, secondsPerBlock)
}

// divRound is n/d rounded half up, without overflowing for large n.
func divRound(n, d uint64) uint64 {
	q, r := n/d, n%d
	if r >= d-r {
		q++
	}
	return q
}

func (rt *Runtime) mine(ctx context.Context, seconds uint64) error {
	if err := rt.call(ctx, nil, "evm_increaseTime", seconds); err != nil {
		return err
	}
	return rt.call(ctx, nil, "evm_mine")
}

// Block returns the header of block number, or of the latest block when
// number is nil.
func (rt *Runtime) Block(ctx context.Context, number *big.Int) (*types.Header, error) {
	if err := rt.checkClient(); err != nil {
		return nil, err
	}
	header, err := rt.client.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, rpcError("eth_getBlockByNumber", err)
	}
	return header, nil
}

func (rt *Runtime) BlockNumber(ctx context.Context) (uint64, error) {
	if err := rt.checkClient(); err != nil {
		return 0, err
	}
	n, err := rt.client.BlockNumber(ctx)
	if err != nil {
		return 0, rpcError("eth_blockNumber", err)
	}
	return n, nil
}

// EstimatedBlockNumber guesses which block was the head at time at, assuming
// one block every avgBlockTime up to now. Times in the future map to the
// current block.
func (rt *Runtime) EstimatedBlockNumber(ctx context.Context, at time.Time, avgBlockTime time.Duration) (uint64, error) {
	if avgBlockTime <= 0 {
		return 0, ErrInvalidBlockTime
	}

	current, err := rt.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	elapsed := rt.now().Sub(at)
	if elapsed <= 0 {
		return current, nil
	}

	blocks := divRound(uint64(elapsed), uint64(avgBlockTime))
	if blocks >= current {
		return 0, nil
	}
	return current - blocks, nil
}

func logMined(start, end *types.Header) {
	logger.WithFields(logger.Fields{
		"startBlock": start.Number,
		"startTime":  start.Time,
		"endBlock":   end.Number,
		"endTime":    end.Time,
	}).Debug("mined blocks")
}
