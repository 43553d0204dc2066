package tracer

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func TestSetNameTag(t *testing.T) {
	tags := NewNameTags()

	require.NoError(t, tags.SetNameTag(exampleAddr, "Example"))

	name, ok := tags.NameTag(common.HexToAddress(exampleAddr))
	assert.True(t, ok)
	assert.Equal(t, "Example", name)
	assert.Equal(t, "Example ("+exampleAddr+")", tags.Label(common.HexToAddress(exampleAddr)))

	// lower case and unprefixed forms resolve to the same address
	require.NoError(t, tags.SetNameTag("5fbdb2315678afecb367f032d93f642f64180aa3", "Renamed"))
	assert.Equal(t, 1, tags.Len())
	name, _ = tags.NameTag(common.HexToAddress(exampleAddr))
	assert.Equal(t, "Renamed", name)
}

func TestSetNameTagErrors(t *testing.T) {
	tags := NewNameTags()

	assert.ErrorIs(t, tags.SetNameTag("0x1234", "Short"), ErrInvalidAddress)
	assert.ErrorIs(t, tags.SetNameTag("not an address", "Bad"), ErrInvalidAddress)
	assert.ErrorIs(t, tags.SetNameTag(exampleAddr, "  "), ErrEmptyName)
	assert.Equal(t, 0, tags.Len())
}

func TestLabelUntagged(t *testing.T) {
	tags := NewNameTags()
	addr := common.HexToAddress(exampleAddr)
	assert.Equal(t, exampleAddr, tags.Label(addr))
}

func TestShortLabel(t *testing.T) {
	tags := NewNameTags()
	addr := common.HexToAddress(exampleAddr)

	assert.Equal(t, "0x5FbD...0aa3", tags.ShortLabel(addr))

	require.NoError(t, tags.SetNameTag(exampleAddr, "Vault"))
	assert.Equal(t, "Vault (0x5FbD...0aa3)", tags.ShortLabel(addr))
}

func TestAllReturnsCopy(t *testing.T) {
	tags := NewNameTags()
	require.NoError(t, tags.SetNameTag(exampleAddr, "Example"))

	all := tags.All()
	delete(all, common.HexToAddress(exampleAddr))
	assert.Equal(t, 1, tags.Len())
}

func TestAddressesSorted(t *testing.T) {
	tags := NewNameTags()
	require.NoError(t, tags.SetNameTag("0x0000000000000000000000000000000000000002", "B"))
	require.NoError(t, tags.SetNameTag("0x0000000000000000000000000000000000000001", "A"))

	addrs := tags.Addresses()
	require.Len(t, addrs, 2)
	assert.Equal(t, common.HexToAddress("0x1"), addrs[0])
	assert.Equal(t, common.HexToAddress("0x2"), addrs[1])
}

func TestConcurrentTagging(t *testing.T) {
	tags := NewNameTags()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr := common.BigToAddress(common.Big1).Hex()
			_ = tags.SetNameTag(addr, "Contract")
			_ = tags.Label(common.HexToAddress(addr))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, tags.Len())
}
