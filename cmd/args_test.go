package cmd

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arguments(t *testing.T, types ...string) abi.Arguments {
	t.Helper()
	args := make(abi.Arguments, len(types))
	for i, typ := range types {
		abiType, err := abi.NewType(typ, "", nil)
		require.NoError(t, err)
		args[i] = abi.Argument{Type: abiType}
	}
	return args
}

func TestParseArgs(t *testing.T) {
	inputs := arguments(t, "uint256", "uint8", "int64", "int256", "bool", "string", "address", "bytes", "bytes4")
	raw := []string{
		"1000000000000000000000",
		"0xff",
		"-42",
		"-1",
		"true",
		"hello",
		"0x5FbDB2315678afecb367f032d93F642f64180aa3",
		"0xdeadbeef",
		"0x01020304",
	}

	args, err := ParseArgs(inputs, raw)
	require.NoError(t, err)

	supply, _ := new(big.Int).SetString("1000000000000000000000", 10)
	assert.Equal(t, supply, args[0])
	assert.Equal(t, uint8(255), args[1])
	assert.Equal(t, int64(-42), args[2])
	assert.Equal(t, big.NewInt(-1), args[3])
	assert.Equal(t, true, args[4])
	assert.Equal(t, "hello", args[5])
	assert.Equal(t, ethcommon.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), args[6])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, args[7])
	assert.Equal(t, [4]byte{1, 2, 3, 4}, args[8])

	// the parsed values must be packable as is
	_, err = inputs.Pack(args...)
	assert.NoError(t, err)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		typ string
		raw string
	}{
		{"uint8", "256"},
		{"uint256", "-1"},
		{"int8", "128"},
		{"int8", "-129"},
		{"uint256", "lots"},
		{"bool", "maybe"},
		{"address", "0x1234"},
		{"bytes", "beef"},
		{"bytes4", "0x0102"},
		{"uint256[]", "1"},
	}
	for _, tt := range tests {
		_, err := ParseArgs(arguments(t, tt.typ), []string{tt.raw})
		assert.Error(t, err, "%s %s", tt.typ, tt.raw)
	}

	_, err := ParseArgs(arguments(t, "uint256"), nil)
	assert.ErrorContains(t, err, "expected 1 arguments, got 0")

	args, err := ParseArgs(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}
