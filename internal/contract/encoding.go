package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

const wordSize = 32

// tt256 is 2^256, used to sign-extend int256 words
var tt256 = new(big.Int).Lsh(big.NewInt(1), 256)

var (
	// ErrUnsupportedType is returned for ABI types the raw encoder does not handle (arrays, tuples)
	ErrUnsupportedType = errors.New("unsupported ABI type")

	// ErrEmptyResult is returned when a call that declares outputs returned no data
	ErrEmptyResult = errors.New("call returned no data")
)

// Selector returns the 4-byte function selector of a canonical signature
func Selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// EventTopic returns the topic[0] hash of a canonical event signature
func EventTopic(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

// EncodeCall returns the selector of m followed by its encoded arguments
func EncodeCall(m MethodDescriptor, args ...any) ([]byte, error) {
	encoded, err := EncodeArguments(m.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Signature(), err)
	}
	return append(Selector(m.Signature()), encoded...), nil
}

// EncodeArguments lays arguments out in ABI head/tail form. Static values
// occupy one 32-byte head word; string and bytes put their offset in the
// head and length-prefixed, right-padded data in the tail.
func EncodeArguments(params []Param, args []any) ([]byte, error) {
	if len(params) != len(args) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(params), len(args))
	}

	headSize := wordSize * len(params)
	head := make([]byte, 0, headSize)
	var tail []byte

	for i, p := range params {
		typ := canonicalType(p.Type)
		if isDynamic(typ) {
			data, err := encodeDynamic(typ, args[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d (%s): %w", i, typ, err)
			}
			offset := big.NewInt(int64(headSize + len(tail)))
			head = append(head, common.LeftPadBytes(offset.Bytes(), wordSize)...)
			tail = append(tail, data...)
			continue
		}

		word, err := encodeStatic(typ, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, typ, err)
		}
		head = append(head, word...)
	}

	return append(head, tail...), nil
}

// DecodeOutputs decodes return data laid out by the same rules as EncodeArguments.
// Integers decode to *big.Int, addresses to common.Address, bytesN and bytes to []byte.
func DecodeOutputs(params []Param, data []byte) ([]any, error) {
	if len(params) == 0 {
		return []any{}, nil
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	if len(data) < wordSize*len(params) {
		return nil, fmt.Errorf("result too short: %d bytes for %d outputs", len(data), len(params))
	}

	out := make([]any, len(params))
	for i, p := range params {
		typ := canonicalType(p.Type)
		word := data[i*wordSize : (i+1)*wordSize]

		if isDynamic(typ) {
			raw, err := decodeDynamic(data, word)
			if err != nil {
				return nil, fmt.Errorf("output %d (%s): %w", i, typ, err)
			}
			if typ == "string" {
				out[i] = string(raw)
			} else {
				out[i] = raw
			}
			continue
		}

		v, err := decodeStatic(typ, word)
		if err != nil {
			return nil, fmt.Errorf("output %d (%s): %w", i, typ, err)
		}
		out[i] = v
	}
	return out, nil
}

func isDynamic(typ string) bool {
	return typ == "string" || typ == "bytes"
}

func encodeStatic(typ string, arg any) ([]byte, error) {
	switch {
	case strings.HasPrefix(typ, "uint"):
		bits, err := typeBits(typ[len("uint"):])
		if err != nil {
			return nil, err
		}
		v, err := toBigInt(arg)
		if err != nil {
			return nil, err
		}
		if v.Sign() < 0 || v.BitLen() > bits {
			return nil, fmt.Errorf("value %s out of range for uint%d", v, bits)
		}
		return common.LeftPadBytes(v.Bytes(), wordSize), nil

	case strings.HasPrefix(typ, "int"):
		bits, err := typeBits(typ[len("int"):])
		if err != nil {
			return nil, err
		}
		v, err := toBigInt(arg)
		if err != nil {
			return nil, err
		}
		limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		if v.Cmp(limit) >= 0 || v.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %s out of range for int%d", v, bits)
		}
		return math.U256Bytes(new(big.Int).Set(v)), nil

	case typ == "address":
		addr, err := toAddress(arg)
		if err != nil {
			return nil, err
		}
		return common.LeftPadBytes(addr.Bytes(), wordSize), nil

	case typ == "bool":
		b, ok := arg.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", arg)
		}
		word := make([]byte, wordSize)
		if b {
			word[wordSize-1] = 1
		}
		return word, nil

	case strings.HasPrefix(typ, "bytes"):
		size, err := strconv.Atoi(typ[len("bytes"):])
		if err != nil || size < 1 || size > wordSize {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
		}
		b, err := toBytes(arg)
		if err != nil {
			return nil, err
		}
		if len(b) > size {
			return nil, fmt.Errorf("%d bytes do not fit %s", len(b), typ)
		}
		return common.RightPadBytes(b, wordSize), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

func encodeDynamic(typ string, arg any) ([]byte, error) {
	var data []byte
	if typ == "string" {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", arg)
		}
		data = []byte(s)
	} else {
		b, err := toBytes(arg)
		if err != nil {
			return nil, err
		}
		data = b
	}

	padded := (len(data) + wordSize - 1) / wordSize * wordSize
	out := common.LeftPadBytes(big.NewInt(int64(len(data))).Bytes(), wordSize)
	return append(out, common.RightPadBytes(data, padded)...), nil
}

func decodeStatic(typ string, word []byte) (any, error) {
	switch {
	case strings.HasPrefix(typ, "uint"):
		return new(big.Int).SetBytes(word), nil
	case strings.HasPrefix(typ, "int"):
		v := new(big.Int).SetBytes(word)
		if v.Bit(8*wordSize-1) == 1 {
			v.Sub(v, tt256)
		}
		return v, nil
	case typ == "address":
		return common.BytesToAddress(word[wordSize-common.AddressLength:]), nil
	case typ == "bool":
		return word[wordSize-1] != 0, nil
	case strings.HasPrefix(typ, "bytes"):
		size, err := strconv.Atoi(typ[len("bytes"):])
		if err != nil || size < 1 || size > wordSize {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
		}
		return append([]byte(nil), word[:size]...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

func decodeDynamic(data, word []byte) ([]byte, error) {
	offset := new(big.Int).SetBytes(word)
	if offset.Cmp(big.NewInt(int64(len(data)-wordSize))) > 0 {
		return nil, fmt.Errorf("offset %s out of bounds", offset)
	}
	start := int(offset.Int64()) + wordSize
	length := new(big.Int).SetBytes(data[start-wordSize : start])
	if length.Cmp(big.NewInt(int64(len(data)-start))) > 0 {
		return nil, fmt.Errorf("length %s out of bounds", length)
	}
	return append([]byte(nil), data[start:start+int(length.Int64())]...), nil
}

func typeBits(suffix string) (int, error) {
	if suffix == "" {
		return 256, nil
	}
	bits, err := strconv.Atoi(suffix)
	if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, fmt.Errorf("%w: integer width %q", ErrUnsupportedType, suffix)
	}
	return bits, nil
}

func toBigInt(arg any) (*big.Int, error) {
	switch v := arg.(type) {
	case *big.Int:
		if v == nil {
			return nil, errors.New("nil integer")
		}
		return v, nil
	case big.Int:
		return &v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		n, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("expected integer, got %T", arg)
}

func toAddress(arg any) (common.Address, error) {
	switch v := arg.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return common.Address{}, errors.New("nil address")
		}
		return *v, nil
	case string:
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("invalid address %q", v)
		}
		return common.HexToAddress(v), nil
	}
	return common.Address{}, fmt.Errorf("expected address, got %T", arg)
}

func toBytes(arg any) ([]byte, error) {
	switch v := arg.(type) {
	case []byte:
		return v, nil
	case hexutil.Bytes:
		return v, nil
	case common.Hash:
		return v.Bytes(), nil
	case [32]byte:
		return v[:], nil
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", v, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("expected bytes, got %T", arg)
}
