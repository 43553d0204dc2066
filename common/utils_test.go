package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexPrefix(t *testing.T) {
	assert.Equal(t, "abcd", Trim0xPrefix("0xabcd"))
	assert.Equal(t, "abcd", Trim0xPrefix("0Xabcd"))
	assert.Equal(t, "0xabcd", Prepend0xPrefix("abcd"))
	assert.Equal(t, "0Xabcd", Prepend0xPrefix("0Xabcd"))
	assert.True(t, Has0xPrefix("0x"))
	assert.False(t, Has0xPrefix("x0"))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "0x1234...cdef", Shorten("0x1234567890abcdef", 4))
	assert.Equal(t, "0x1234", Shorten("1234", 4))
}

func TestBigIntClone(t *testing.T) {
	orig := big.NewInt(1000)
	clone := BigIntClone(orig)
	assert.Equal(t, orig, clone)

	clone.Add(clone, big.NewInt(1))
	assert.Equal(t, int64(1000), orig.Int64())
	assert.Nil(t, BigIntClone(nil))
}

func TestEtherToWei(t *testing.T) {
	assert.Equal(t, "10000000000000000000000", EtherToWei(10000).String())
	assert.NotEqual(t, RandEthAddress(), RandEthAddress())
}
