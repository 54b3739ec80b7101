package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeMethod = MethodDescriptor{
	Name:       "store",
	Inputs:     []Param{{Name: "num", Type: "uint256"}},
	Mutability: StateChanging,
}

func TestSelector(t *testing.T) {
	assert.Equal(t, "0x6057361d", hexutil.Encode(Selector("store(uint256)")))
	assert.Equal(t, "0x2e64cec1", hexutil.Encode(Selector("retrieve()")))
}

func TestEncodeCallStore42(t *testing.T) {
	data, err := EncodeCall(storeMethod, 42)
	require.NoError(t, err)
	assert.Equal(t,
		"0x6057361d000000000000000000000000000000000000000000000000000000000000002a",
		hexutil.Encode(data),
	)
}

func TestSignatureCanonicalisesIntAliases(t *testing.T) {
	m := MethodDescriptor{Name: "f", Inputs: []Param{{Type: "uint"}, {Type: "int"}, {Type: "string"}}}
	assert.Equal(t, "f(uint256,int256,string)", m.Signature())
}

func newArguments(t *testing.T, types ...string) abi.Arguments {
	t.Helper()
	args := make(abi.Arguments, len(types))
	for i, typ := range types {
		abiType, err := abi.NewType(typ, "", nil)
		require.NoError(t, err)
		args[i] = abi.Argument{Type: abiType}
	}
	return args
}

func paramsOf(types ...string) []Param {
	out := make([]Param, len(types))
	for i, typ := range types {
		out[i] = Param{Type: typ}
	}
	return out
}

func TestEncodeArgumentsMatchesABIPacker(t *testing.T) {
	var hash [32]byte
	copy(hash[:], []byte("quorum"))
	addr := common.HexToAddress("0x00000000000000000000000000000000deadbeef")

	tests := []struct {
		name   string
		types  []string
		packed []any
		raw    []any
	}{
		{
			name:   "requestLoan",
			types:  []string{"string", "uint256", "uint256", "uint256"},
			packed: []any{"USD", big.NewInt(100000), big.NewInt(5000), big.NewInt(2592000)},
			raw:    []any{"USD", 100000, 5000, 2592000},
		},
		{
			name:   "two dynamic values",
			types:  []string{"string", "bytes", "uint256"},
			packed: []any{"a string that is longer than thirty-two bytes", []byte{1, 2, 3}, big.NewInt(7)},
			raw:    []any{"a string that is longer than thirty-two bytes", []byte{1, 2, 3}, uint64(7)},
		},
		{
			name:   "static mix",
			types:  []string{"address", "bool", "bytes32", "uint8"},
			packed: []any{addr, true, hash, uint8(200)},
			raw:    []any{addr.Hex(), true, hash, 200},
		},
		{
			name:   "negative int",
			types:  []string{"int256"},
			packed: []any{big.NewInt(-5)},
			raw:    []any{-5},
		},
		{
			name:   "empty string",
			types:  []string{"string"},
			packed: []any{""},
			raw:    []any{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := newArguments(t, tt.types...).Pack(tt.packed...)
			require.NoError(t, err)

			got, err := EncodeArguments(paramsOf(tt.types...), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, hexutil.Encode(want), hexutil.Encode(got))
		})
	}

	t.Run("int256 decode", func(t *testing.T) {
		minInt256 := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
		for _, n := range []*big.Int{big.NewInt(-1), big.NewInt(-123456789), minInt256, big.NewInt(77)} {
			packed, err := newArguments(t, "int256").Pack(n)
			require.NoError(t, err)

			values, err := DecodeOutputs(paramsOf("int256"), packed)
			require.NoError(t, err)
			assert.Equal(t, 0, n.Cmp(values[0].(*big.Int)), "decoded %s, want %s", values[0], n)
		}
	})
}

func TestEncodeArgumentsErrors(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		args  []any
	}{
		{"arity", []string{"uint256"}, []any{}},
		{"uint8 overflow", []string{"uint8"}, []any{256}},
		{"negative uint", []string{"uint256"}, []any{-1}},
		{"int8 overflow", []string{"int8"}, []any{128}},
		{"bad address", []string{"address"}, []any{"0x1234"}},
		{"bool type", []string{"bool"}, []any{1}},
		{"bytes4 too long", []string{"bytes4"}, []any{[]byte{1, 2, 3, 4, 5}}},
		{"array", []string{"uint256[]"}, []any{[]int{1}}},
		{"tuple", []string{"tuple"}, []any{struct{}{}}},
		{"string type", []string{"string"}, []any{42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeArguments(paramsOf(tt.types...), tt.args)
			require.Error(t, err)
		})
	}

	_, err := EncodeArguments(paramsOf("uint256[]"), []any{[]int{1}})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDecodeOutputsLoanDetails(t *testing.T) {
	types := []string{"uint256", "address", "address", "string", "uint256", "uint256", "uint256", "uint256", "uint8"}
	borrower := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := newArguments(t, types...).Pack(
		big.NewInt(1), borrower, common.Address{}, "USD",
		big.NewInt(100000), big.NewInt(5000), big.NewInt(2592000), big.NewInt(1700000000), uint8(1),
	)
	require.NoError(t, err)

	values, err := DecodeOutputs(paramsOf(types...), data)
	require.NoError(t, err)
	require.Len(t, values, 9)

	assert.Equal(t, int64(1), values[0].(*big.Int).Int64())
	assert.Equal(t, borrower, values[1])
	assert.Equal(t, common.Address{}, values[2])
	assert.Equal(t, "USD", values[3])
	assert.Equal(t, int64(2592000), values[6].(*big.Int).Int64())
	assert.Equal(t, int64(1), values[8].(*big.Int).Int64())
}

func TestDecodeOutputsSigned(t *testing.T) {
	data, err := EncodeArguments(paramsOf("int256", "bool"), []any{-42, true})
	require.NoError(t, err)

	values, err := DecodeOutputs(paramsOf("int256", "bool"), data)
	require.NoError(t, err)
	assert.Equal(t, int64(-42), values[0].(*big.Int).Int64())
	assert.Equal(t, true, values[1])
}

func TestDecodeOutputsErrors(t *testing.T) {
	_, err := DecodeOutputs(paramsOf("uint256"), nil)
	assert.ErrorIs(t, err, ErrEmptyResult)

	_, err = DecodeOutputs(paramsOf("uint256", "uint256"), make([]byte, 32))
	assert.Error(t, err)

	// offset pointing past the end
	word := common.LeftPadBytes(big.NewInt(4096).Bytes(), 32)
	_, err = DecodeOutputs(paramsOf("string"), word)
	assert.Error(t, err)

	values, err := DecodeOutputs(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDecodeOutputsMalformedDynamic(t *testing.T) {
	maxUint64 := new(big.Int).SetUint64(^uint64(0))

	tests := []struct {
		name   string
		offset *big.Int
		length *big.Int
	}{
		{"offset near 2^64", maxUint64, big.NewInt(3)},
		{"offset past 2^64", new(big.Int).Lsh(big.NewInt(1), 200), big.NewInt(3)},
		{"length near 2^64", big.NewInt(32), new(big.Int).Sub(maxUint64, big.NewInt(10))},
		{"length past 2^64", big.NewInt(32), new(big.Int).Lsh(big.NewInt(1), 255)},
		{"length one too long", big.NewInt(32), big.NewInt(33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := common.LeftPadBytes(tt.offset.Bytes(), 32)
			data = append(data, common.LeftPadBytes(tt.length.Bytes(), 32)...)
			data = append(data, common.RightPadBytes([]byte("abc"), 32)...)

			require.NotPanics(t, func() {
				_, err := DecodeOutputs(paramsOf("string"), data)
				assert.Error(t, err)
			})
		})
	}

	data := common.LeftPadBytes(big.NewInt(32).Bytes(), 32)
	data = append(data, common.LeftPadBytes(big.NewInt(32).Bytes(), 32)...)
	data = append(data, common.RightPadBytes([]byte("abc"), 32)...)
	values, err := DecodeOutputs(paramsOf("string"), data)
	require.NoError(t, err)
	assert.Len(t, values[0], 32)
}
