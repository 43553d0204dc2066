package common

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

// ToQuantity converts v into the JSON-RPC quantity encoding: 0x-prefixed
// lowercase hex without leading zeros ("0x0" for zero).
//
// Accepted inputs are decimal or 0x-prefixed hex strings, every Go integer
// kind, integral float64 values, *big.Int, big.Int and *uint256.Int.
// Negative values are rejected.
func ToQuantity(v any) (string, error) {
	n, err := ToBigInt(v)
	if err != nil {
		return "", err
	}
	return hexutil.EncodeBig(n), nil
}

// ToBigInt converts v into a non-negative *big.Int. See ToQuantity for the
// accepted input types.
func ToBigInt(v any) (*big.Int, error) {
	var n *big.Int

	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrInvalidQuantity)
		}
		n = BigIntClone(x)
	case big.Int:
		n = BigIntClone(&x)
	case *uint256.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil *uint256.Int", ErrInvalidQuantity)
		}
		n = x.ToBig()
	case string:
		parsed, err := parseQuantityString(x)
		if err != nil {
			return nil, err
		}
		n = parsed
	case int:
		n = big.NewInt(int64(x))
	case int8:
		n = big.NewInt(int64(x))
	case int16:
		n = big.NewInt(int64(x))
	case int32:
		n = big.NewInt(int64(x))
	case int64:
		n = big.NewInt(x)
	case uint:
		n = new(big.Int).SetUint64(uint64(x))
	case uint8:
		n = new(big.Int).SetUint64(uint64(x))
	case uint16:
		n = new(big.Int).SetUint64(uint64(x))
	case uint32:
		n = new(big.Int).SetUint64(uint64(x))
	case uint64:
		n = new(big.Int).SetUint64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidQuantity, x)
		}
		n, _ = big.NewFloat(x).Int(nil)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidQuantity, v)
	}

	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s", ErrInvalidQuantity, n)
	}
	return n, nil
}

func parseQuantityString(s string) (*big.Int, error) {
	str := strings.TrimSpace(s)

	base := 10
	if Has0xPrefix(str) {
		str = Trim0xPrefix(str)
		base = 16
	}
	if str == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidQuantity)
	}

	n, ok := new(big.Int).SetString(str, base)
	if !ok {
		return nil, fmt.Errorf("%w: cannot parse %q", ErrInvalidQuantity, s)
	}
	return n, nil
}
