package artifacts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorumkit/internal/contract"
)

func TestLoadEmbedded(t *testing.T) {
	for _, name := range []string{SimpleStorage, FiatLoanMatcher, VersionProbe} {
		t.Run(name, func(t *testing.T) {
			a, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, name, a.Name)
			assert.NotEmpty(t, a.Bytecode)
			assert.NotEmpty(t, a.ABI.Methods)
		})
	}
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("Nope")
	require.Error(t, err)
}

func TestSimpleStorageBytecodeDispatchesKnownSelectors(t *testing.T) {
	a := MustLoad(SimpleStorage)

	store, ok := a.ABI.Methods["store"]
	require.True(t, ok)
	retrieve, ok := a.ABI.Methods["retrieve"]
	require.True(t, ok)

	// the runtime dispatcher compares against PUSH4 <selector>
	assert.True(t, bytes.Contains(a.Bytecode, append([]byte{0x63}, store.ID...)))
	assert.True(t, bytes.Contains(a.Bytecode, append([]byte{0x63}, retrieve.ID...)))
	assert.Equal(t, contract.Selector("store(uint256)"), store.ID)
}

func TestFiatLoanMatcherDescriptors(t *testing.T) {
	a := MustLoad(FiatLoanMatcher)

	methods := map[string]contract.MethodDescriptor{}
	for _, m := range a.Methods() {
		methods[m.Name] = m
	}

	require.Contains(t, methods, "requestLoan")
	assert.Equal(t, "requestLoan(string,uint256,uint256,uint256)", methods["requestLoan"].Signature())
	assert.Equal(t, contract.StateChanging, methods["requestLoan"].Mutability)

	require.Contains(t, methods, "getLoanDetails")
	assert.Equal(t, contract.ReadOnly, methods["getLoanDetails"].Mutability)
	assert.Len(t, methods["getLoanDetails"].Outputs, 9)

	_, ok := a.ABI.Events["LoanRequested"]
	assert.True(t, ok)
}

func TestNewNormalisesBytecode(t *testing.T) {
	a, err := New("X", `[]`, " 6001\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01}, a.Bytecode)

	_, err = New("X", `[]`, "")
	require.Error(t, err)

	_, err = New("X", `not json`, "0x00")
	require.Error(t, err)
}

func TestDeployDataWithoutConstructor(t *testing.T) {
	a := MustLoad(SimpleStorage)
	data, err := a.DeployData()
	require.NoError(t, err)
	assert.Equal(t, a.Bytecode, data)
}

func TestHelloWorldSource(t *testing.T) {
	assert.Contains(t, HelloWorldSource(), "contract HelloWorld")
}
