package devnet

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/TEENet-io/devchain/simnode"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMineBlocks(t *testing.T) {
	nodeCfg := simnode.DefaultConfig()
	nodeCfg.ForkBlockNumber = 1000
	rt, _ := newSimnodeRuntime(t, nodeCfg, nil)
	ctx := context.Background()

	start, err := rt.Block(ctx, nil)
	require.NoError(t, err)

	now, err := rt.MineBlock(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, start.Number.Uint64()+1, now.Number.Uint64())
	assert.Equal(t, start.Time+60, now.Time)

	now, err = rt.MineBlocks(ctx, 60, 10)
	require.NoError(t, err)
	n, err := rt.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, now.Number.Uint64())
	assert.Equal(t, start.Number.Uint64()+7, now.Number.Uint64())
	assert.Equal(t, start.Time+60+60, now.Time)

	byNumber, err := rt.Block(ctx, now.Number)
	require.NoError(t, err)
	assert.Equal(t, now.Time, byNumber.Time)
	assert.Equal(t, now.Hash(), byNumber.Hash())

	// the fixed clock keeps the estimate independent of test duration
	clock := time.Unix(1_800_000_000, 0)
	rt.now = func() time.Time { return clock }

	estimated, err := rt.EstimatedBlockNumber(ctx, clock, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, now.Number.Uint64(), estimated)

	estimated, err = rt.EstimatedBlockNumber(ctx, clock.Add(-10*time.Second), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, now.Number.Uint64()-1, estimated)
}

func TestMineBlocksRounding(t *testing.T) {
	rt, _ := newSimnodeRuntime(t, nil, nil)
	ctx := context.Background()

	start, err := rt.Block(ctx, nil)
	require.NoError(t, err)

	// 6.5 blocks round up to 7
	now, err := rt.MineBlocks(ctx, 65, 10)
	require.NoError(t, err)
	assert.Equal(t, start.Number.Uint64()+7, now.Number.Uint64())
	assert.Equal(t, start.Time+70, now.Time)

	// 0.4 blocks round down to none
	same, err := rt.MineBlocks(ctx, 4, 10)
	require.NoError(t, err)
	assert.Equal(t, now.Number, same.Number)
	assert.Equal(t, now.Time, same.Time)

	_, err = rt.MineBlocks(ctx, 60, 0)
	assert.ErrorIs(t, err, ErrInvalidBlockTime)
}

func TestBlocksFor(t *testing.T) {
	tests := []struct {
		seconds, perBlock, want uint64
	}{
		{60, 10, 6},
		{64, 10, 6},
		{65, 10, 7},
		{4, 10, 0},
		{5, 10, 1},
		{0, 10, 0},
		{3600, 12, 300},
		{7, 2, 4},
		{10, 0, 0},
		{1 << 63, 1, 1 << 63},
		{math.MaxUint64, 2, 1 << 63},
		{math.MaxUint64, math.MaxUint64, 1},
		{math.MaxUint64 - 1, math.MaxUint64, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BlocksFor(tt.seconds, tt.perBlock), "%d/%d", tt.seconds, tt.perBlock)
	}
}

func TestMineBlocksRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	client := NewMockEthClient(ctrl)
	rt := NewWithBackend(testConfig(), provider, client)
	ctx := context.Background()

	start := &types.Header{Number: big.NewInt(10), Time: 100}
	end := &types.Header{Number: big.NewInt(12), Time: 130}

	gomock.InOrder(
		client.EXPECT().HeaderByNumber(ctx, nil).Return(start, nil),
		provider.EXPECT().CallContext(ctx, nil, "evm_increaseTime", uint64(15)).Return(nil),
		provider.EXPECT().CallContext(ctx, nil, "evm_mine").Return(nil),
		provider.EXPECT().CallContext(ctx, nil, "evm_increaseTime", uint64(15)).Return(nil),
		provider.EXPECT().CallContext(ctx, nil, "evm_mine").Return(nil),
		client.EXPECT().HeaderByNumber(ctx, nil).Return(end, nil),
	)

	header, err := rt.MineBlocks(ctx, 30, 15)
	require.NoError(t, err)
	assert.Equal(t, end, header)
}

func TestEstimatedBlockNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	client := NewMockEthClient(ctrl)
	rt := NewWithBackend(testConfig(), provider, client)
	ctx := context.Background()

	clock := time.Unix(1_800_000_000, 0)
	rt.now = func() time.Time { return clock }
	client.EXPECT().BlockNumber(ctx).Return(uint64(100), nil).AnyTimes()

	tests := []struct {
		at   time.Time
		avg  time.Duration
		want uint64
	}{
		{clock, 10 * time.Second, 100},
		{clock.Add(-10 * time.Second), 10 * time.Second, 99},
		{clock.Add(-14 * time.Second), 10 * time.Second, 99},
		{clock.Add(-15 * time.Second), 10 * time.Second, 98},
		{clock.Add(-time.Hour), 12 * time.Second, 0},
		{clock.Add(time.Hour), 12 * time.Second, 100},
		{clock.Add(-120 * time.Second), 2 * time.Second, 40},
		// spans long enough that doubling them overflows a Duration
		{clock.Add(-200 * 365 * 24 * time.Hour), time.Nanosecond, 0},
		{time.Time{}, time.Nanosecond, 0},
		{time.Time{}, time.Duration(math.MaxInt64), 99},
	}
	for _, tt := range tests {
		got, err := rt.EstimatedBlockNumber(ctx, tt.at, tt.avg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "at=%v avg=%v", tt.at, tt.avg)
	}

	_, err := rt.EstimatedBlockNumber(ctx, clock, 0)
	assert.ErrorIs(t, err, ErrInvalidBlockTime)
}
