// Package params implements the parameter-normalization boundary between
// schema-validated tool inputs and SDK values. Every helper is a pure
// transform from the raw parameter map to a typed value; failures are plain
// errors that tools surface as failed results rather than faults.
package params

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// weiPerEther is 10^18, the scaling factor between ether and wei.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// String returns the named parameter as a string.
func String(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q: expected string, got %T", key, v)
	}
	return s, nil
}

// OptionalString returns the named parameter as a string, or the fallback
// if the parameter is absent.
func OptionalString(m map[string]any, key, fallback string) (string, error) {
	if _, ok := m[key]; !ok {
		return fallback, nil
	}
	return String(m, key)
}

// Address parses the named parameter as a 0x-prefixed hex address.
func Address(m map[string]any, key string) (common.Address, error) {
	s, err := String(m, key)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("parameter %q: %q is not a valid address", key, s)
	}
	return common.HexToAddress(s), nil
}

// Bytes parses the named parameter as hex-encoded bytes. The 0x prefix is
// optional.
func Bytes(m map[string]any, key string) ([]byte, error) {
	s, err := String(m, key)
	if err != nil {
		return nil, err
	}
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: invalid hex: %w", key, err)
	}
	return data, nil
}

// BigInt parses the named parameter as an arbitrary-precision integer. It
// accepts JSON numbers and decimal or 0x-prefixed hex strings.
func BigInt(m map[string]any, key string) (*big.Int, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", key)
	}

	switch n := v.(type) {
	case string:
		base := 10
		s := n
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			base = 16
			s = s[2:]
		}
		i, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("parameter %q: %q is not a valid integer", key, n)
		}
		return i, nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("parameter %q: %v is not a whole number", key, n)
		}
		return big.NewInt(int64(n)), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	default:
		return nil, fmt.Errorf("parameter %q: expected integer, got %T", key, v)
	}
}

// EtherAmount parses the named parameter as an ether-denominated amount and
// converts it to wei. Decimal strings and JSON numbers are accepted; the
// conversion is exact and rejects sub-wei precision.
func EtherAmount(m map[string]any, key string) (*big.Int, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", key)
	}

	var text string
	switch n := v.(type) {
	case string:
		text = n
	case float64:
		text = new(big.Float).SetPrec(256).SetFloat64(n).Text('f', -1)
	case int:
		return new(big.Int).Mul(big.NewInt(int64(n)), weiPerEther), nil
	default:
		return nil, fmt.Errorf("parameter %q: expected amount, got %T", key, v)
	}

	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, fmt.Errorf("parameter %q: %q is not a valid amount", key, text)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("parameter %q: amount must not be negative", key)
	}

	wei := new(big.Rat).Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !wei.IsInt() {
		return nil, fmt.Errorf("parameter %q: %q has sub-wei precision", key, text)
	}
	return wei.Num(), nil
}

// FormatEther renders a wei amount as a decimal ether string.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
