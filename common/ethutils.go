package common

import (
	"crypto/rand"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Ether is 10^18 wei.
var Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

func RandEthAddress() ethcommon.Address {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return ethcommon.Address{}
	}
	return ethcommon.BytesToAddress(b[:])
}

// EtherToWei returns n ether expressed in wei.
func EtherToWei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}
