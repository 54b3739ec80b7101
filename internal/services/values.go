package services

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// The primary path decodes small integers to native Go types and the raw path
// to *big.Int; these helpers accept both.

func asBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	}
	return nil, fmt.Errorf("expected integer, got %T", v)
}

func asAddress(v any) (common.Address, error) {
	if a, ok := v.(common.Address); ok {
		return a, nil
	}
	return common.Address{}, fmt.Errorf("expected address, got %T", v)
}

func asString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

func single(values []any, method string) (any, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%s returned %d values, expected 1", method, len(values))
	}
	return values[0], nil
}
